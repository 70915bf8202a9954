package console

import (
	"encoding/json"
	"fmt"
)

// jsArgs encodes values as JavaScript literals.
func jsArgs(values ...any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte("null")
		}
		out[i] = string(b)
	}
	return out
}

func script(format string, values ...any) string {
	return fmt.Sprintf(format, jsArgs(values...)...)
}

// tagControlsScript tags matching buttons with their page-order index and
// returns how many it tagged.
func tagControlsScript(texts []string) string {
	return script(`(() => {
  const texts = %s;
  const attr = %s;
  document.querySelectorAll('[' + attr + ']').forEach(el => el.removeAttribute(attr));
  let i = 0;
  document.querySelectorAll('button').forEach(btn => {
    const text = btn.textContent || '';
    if (texts.some(t => text.includes(t))) {
      btn.setAttribute(attr, String(i));
      i++;
    }
  });
  return i;
})()`, texts, controlAttr)
}

func clickControlScript(index int) string {
	return script(`(() => {
  const el = document.querySelector('[' + %s + '="' + %s + '"]');
  if (!el) return false;
  el.click();
  return true;
})()`, controlAttr, fmt.Sprint(index))
}

// tagModalScript marks the first visible dialog.
func tagModalScript(modalSelector string) string {
	return script(`(() => {
  const attr = %s;
  document.querySelectorAll('[' + attr + ']').forEach(el => el.removeAttribute(attr));
  const modal = document.querySelector(%s);
  if (!modal) return false;
  modal.setAttribute(attr, '1');
  return true;
})()`, modalAttr, modalSelector)
}

func tagInputsScript(inputSelector string) string {
	return script(`(() => {
  const modal = document.querySelector('[' + %s + ']');
  if (!modal) return 0;
  const attr = %s;
  const inputs = modal.querySelectorAll(%s);
  inputs.forEach((el, i) => el.setAttribute(attr, String(i)));
  return inputs.length;
})()`, modalAttr, inputAttr, inputSelector)
}

// fillInputScript replaces a field's value and fires the events the page's
// form bindings listen for.
func fillInputScript(index int, text string) string {
	return script(`(() => {
  const el = document.querySelector('[' + %s + '] [' + %s + '="' + %s + '"]');
  if (!el) return false;
  const fire = name => el.dispatchEvent(new Event(name, { bubbles: true }));
  el.focus();
  el.value = '';
  fire('input');
  el.value = %s;
  fire('input');
  fire('change');
  fire('blur');
  return true;
})()`, modalAttr, inputAttr, fmt.Sprint(index), text)
}

func tagApplyScript(sel Selectors) string {
	return script(`(() => {
  const modal = document.querySelector('[' + %s + ']');
  if (!modal) return false;
  const attr = %s;
  let button = modal.querySelector(%s);
  if (!button) {
    const texts = %s;
    button = Array.from(modal.querySelectorAll('button'))
      .find(b => texts.some(t => (b.textContent || '').includes(t)));
  }
  if (!button) button = modal.querySelector(%s);
  if (!button) return false;
  button.setAttribute(attr, '1');
  return true;
})()`, modalAttr, applyAttr, sel.ApplyButton, sel.ApplyTexts, sel.SubmitButton)
}

func clickTaggedScript(attr string) string {
	return script(`(() => {
  const el = document.querySelector('[' + %s + ']');
  if (!el) return false;
  el.click();
  return true;
})()`, attr)
}

// closeModalsScript clicks a close control in every visible dialog and
// returns how many dialogs had none.
func closeModalsScript(sel Selectors) string {
	return script(`(() => {
  const modals = document.querySelectorAll(%s);
  const texts = %s;
  let unclosed = 0;
  modals.forEach(modal => {
    let button = modal.querySelector(%s);
    if (!button) {
      button = Array.from(modal.querySelectorAll('button')).find(b => {
        const text = (b.textContent || '').toLocaleLowerCase('tr-TR');
        return texts.some(t => text.includes(t));
      });
    }
    if (button) {
      button.click();
    } else {
      unclosed++;
    }
  });
  return { found: modals.length, unclosed: unclosed };
})()`, sel.Modal, sel.CloseTexts, sel.CloseButtons)
}

// dismissBackdropScript clicks outside any dialog still visible.
func dismissBackdropScript(sel Selectors) string {
	return script(`(() => {
  const open = document.querySelectorAll(%s).length;
  if (open === 0) return 0;
  const backdrop = document.querySelector(%s);
  if (backdrop) {
    backdrop.click();
  } else {
    document.body.click();
  }
  return open;
})()`, sel.Modal, sel.Backdrop)
}

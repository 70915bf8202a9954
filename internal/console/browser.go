package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// DefaultPageURL is the console's app-translation page.
const DefaultPageURL = "https://play.google.com/console/"

// Options configures the browser session.
type Options struct {
	// URL is opened after launch when set.
	URL string
	// UserDataDir keeps the console login between launches.
	UserDataDir string
	// RemoteURL attaches to an already running Chrome (ws:// devtools URL)
	// instead of launching one.
	RemoteURL string
	Headless  bool

	ModalTimeout    time.Duration
	ModalSettle     time.Duration
	DiscoverySettle time.Duration
	ClickSettle     time.Duration
	CloseSettle     time.Duration

	Selectors Selectors
	Verbose   bool
}

// DefaultOptions returns the waits the console needs to render.
func DefaultOptions() *Options {
	return &Options{
		ModalTimeout:    10 * time.Second,
		ModalSettle:     1 * time.Second,
		DiscoverySettle: 3 * time.Second,
		ClickSettle:     100 * time.Millisecond,
		CloseSettle:     1 * time.Second,
		Selectors:       DefaultSelectors(),
	}
}

// Browser is a Chrome session on the translation page. It implements Surface.
type Browser struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    *Options
}

var _ Surface = (*Browser)(nil)

// Launch starts (or attaches to) Chrome and opens opts.URL if set. The
// session lives until Close is called or parent is cancelled.
func Launch(parent context.Context, opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		if opts.Verbose {
			log.Printf("[BROWSER] Attaching to %s", opts.RemoteURL)
		}
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		flags := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", opts.Headless),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if opts.UserDataDir != "" {
			flags = append(flags, chromedp.UserDataDir(opts.UserDataDir))
		}
		if opts.Verbose {
			log.Printf("[BROWSER] Launching Chrome (headless=%v, profile=%q)", opts.Headless, opts.UserDataDir)
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, flags...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	b := &Browser{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		opts:    opts,
	}

	if err := chromedp.Run(browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if opts.URL != "" {
		if err := b.Navigate(parent, opts.URL); err != nil {
			b.Close()
			return nil, err
		}
	}
	return b, nil
}

// Close ends the browser session.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
}

// Navigate opens url and waits for the body to be ready.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	if b.opts.Verbose {
		log.Printf("[BROWSER] Navigating to %s", url)
	}
	if err := b.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// run executes actions on the session tab, aborting when ctx ends.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (b *Browser) eval(ctx context.Context, js string, res any) error {
	return b.run(ctx, chromedp.Evaluate(js, res))
}

// FindLanguageControls waits for the table to render, tags every
// language control and reads their labels from a DOM snapshot.
func (b *Browser) FindLanguageControls(ctx context.Context) ([]Control, error) {
	var tagged int
	var html string
	err := b.run(ctx,
		chromedp.Sleep(b.opts.DiscoverySettle),
		chromedp.Evaluate(tagControlsScript(b.opts.Selectors.ControlTexts), &tagged),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan page for language controls: %w", err)
	}

	controls, err := ParseControls(html, b.opts.Selectors)
	if err != nil {
		return nil, err
	}
	if len(controls) != tagged {
		log.Printf("[BROWSER] Tagged %d controls but snapshot shows %d", tagged, len(controls))
	}
	if b.opts.Verbose {
		log.Printf("[BROWSER] Found %d language controls", len(controls))
	}
	return controls, nil
}

// OpenModalFor clicks the control and waits up to ModalTimeout for a dialog.
func (b *Browser) OpenModalFor(ctx context.Context, c Control) (Modal, bool, error) {
	var clicked bool
	if err := b.eval(ctx, clickControlScript(c.Index), &clicked); err != nil {
		return nil, false, fmt.Errorf("failed to click control for %s: %w", c.Label, err)
	}
	if !clicked {
		return nil, false, fmt.Errorf("control for %s is no longer on the page", c.Label)
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.opts.ModalTimeout)
	defer cancel()
	if err := b.run(waitCtx, chromedp.WaitVisible(b.opts.Selectors.Modal, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("waiting for dialog failed: %w", err)
	}

	var found bool
	err := b.run(ctx,
		chromedp.Sleep(b.opts.ModalSettle),
		chromedp.Evaluate(tagModalScript(b.opts.Selectors.Modal), &found),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to inspect dialog: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &modal{browser: b}, true, nil
}

// CloseAnyOpenModal clicks each dialog's close control, falls back to
// Escape, then clicks the backdrop if a dialog is still visible.
func (b *Browser) CloseAnyOpenModal(ctx context.Context) error {
	var res struct {
		Found    int `json:"found"`
		Unclosed int `json:"unclosed"`
	}
	if err := b.eval(ctx, closeModalsScript(b.opts.Selectors), &res); err != nil {
		return fmt.Errorf("failed to close dialogs: %w", err)
	}
	if res.Found == 0 {
		return nil
	}
	if b.opts.Verbose {
		log.Printf("[BROWSER] Closing %d open dialog(s)", res.Found)
	}

	if res.Unclosed > 0 {
		if err := b.run(ctx, chromedp.KeyEvent(kb.Escape)); err != nil {
			return fmt.Errorf("failed to send escape: %w", err)
		}
	}
	if err := b.run(ctx, chromedp.Sleep(b.opts.CloseSettle)); err != nil {
		return err
	}

	var stillOpen int
	if err := b.eval(ctx, dismissBackdropScript(b.opts.Selectors), &stillOpen); err != nil {
		return fmt.Errorf("failed to dismiss backdrop: %w", err)
	}
	if stillOpen > 0 {
		return b.run(ctx, chromedp.Sleep(b.opts.CloseSettle))
	}
	return nil
}

type modal struct {
	browser *Browser
}

func (m *modal) Inputs(ctx context.Context) ([]Input, error) {
	var count int
	if err := m.browser.eval(ctx, tagInputsScript(m.browser.opts.Selectors.Inputs), &count); err != nil {
		return nil, fmt.Errorf("failed to list dialog inputs: %w", err)
	}
	inputs := make([]Input, count)
	for i := range inputs {
		inputs[i] = &input{browser: m.browser, index: i}
	}
	return inputs, nil
}

func (m *modal) Confirm(ctx context.Context) (Button, bool, error) {
	var found bool
	if err := m.browser.eval(ctx, tagApplyScript(m.browser.opts.Selectors), &found); err != nil {
		return nil, false, fmt.Errorf("failed to locate apply button: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &button{browser: m.browser, attr: applyAttr}, true, nil
}

type input struct {
	browser *Browser
	index   int
}

func (in *input) Fill(ctx context.Context, text string) error {
	var ok bool
	if err := in.browser.eval(ctx, fillInputScript(in.index, text), &ok); err != nil {
		return fmt.Errorf("failed to fill input %d: %w", in.index, err)
	}
	if !ok {
		return fmt.Errorf("input %d is no longer on the page", in.index)
	}
	return nil
}

type button struct {
	browser *Browser
	attr    string
}

func (bt *button) Click(ctx context.Context) error {
	var ok bool
	if err := bt.browser.eval(ctx, clickTaggedScript(bt.attr), &ok); err != nil {
		return fmt.Errorf("failed to click button: %w", err)
	}
	if !ok {
		return fmt.Errorf("button is no longer on the page")
	}
	return bt.browser.run(ctx, chromedp.Sleep(bt.browser.opts.ClickSettle))
}

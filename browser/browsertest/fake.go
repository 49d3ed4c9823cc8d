// Package browsertest provides a scriptable in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
)

// Element is a scripted DOM node.
type Element struct {
	State browser.ElementState
	Text  string

	// Frame is the frame element the node lives in. The zero Locator means
	// the top-level document.
	Frame browser.Locator

	// AppearAfter makes the first N probes report ErrNoSuchElement.
	AppearAfter int

	// ProbeErrs and ClickErrs are consumed in order, one per call.
	ProbeErrs []error
	ClickErrs []error

	TypeErr   error
	SubmitErr error

	// OnClick runs after a successful click.
	OnClick func(p *Page)

	Typed   []string
	Cleared int
	Probes  int
	Clicks  int
}

// Page implements browser.Page over a map of scripted elements.
type Page struct {
	mu sync.Mutex

	URL         string
	NavigateErr map[string]error
	ReloadErr   error
	Reloads     int

	elements   map[browser.Locator]*Element
	generation uint64
	frames     []browser.Locator
	ops        []string
}

var _ browser.Page = (*Page)(nil)

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{
		NavigateErr: make(map[string]error),
		elements:    make(map[browser.Locator]*Element),
	}
}

// Add registers el under loc and returns it.
func (p *Page) Add(loc browser.Locator, el *Element) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[loc] = el
	return el
}

// AddActionable registers a visible, enabled, uncovered element.
func (p *Page) AddActionable(loc browser.Locator) *Element {
	return p.Add(loc, &Element{State: browser.ElementState{Visible: true, Enabled: true}})
}

// Element returns the element registered under loc, or nil.
func (p *Page) Element(loc browser.Locator) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[loc]
}

// Remove unregisters loc.
func (p *Page) Remove(loc browser.Locator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, loc)
}

// Ops returns the recorded operations in order.
func (p *Page) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.ops))
	copy(out, p.ops)
	return out
}

// InFrame reports whether a frame scope is active.
func (p *Page) InFrame() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames) > 0
}

func (p *Page) record(format string, args ...interface{}) {
	p.ops = append(p.ops, fmt.Sprintf(format, args...))
}

func (p *Page) currentFrame() browser.Locator {
	if n := len(p.frames); n > 0 {
		return p.frames[n-1]
	}
	return browser.Locator{}
}

// Navigate records the URL and starts a new document.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate %s", url)
	p.generation++
	p.frames = nil
	if err := p.NavigateErr[url]; err != nil {
		return err
	}
	p.URL = url
	return nil
}

// Reload starts a new document.
func (p *Page) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("reload")
	p.Reloads++
	p.generation++
	p.frames = nil
	return p.ReloadErr
}

// Generation identifies the current document.
func (p *Page) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Probe resolves loc in the current frame scope.
func (p *Page) Probe(ctx context.Context, loc browser.Locator) (*browser.Element, error) {
	if _, err := loc.XPath(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	el, err := p.resolve(loc)
	if err != nil {
		return nil, err
	}

	return &browser.Element{
		Locator:    loc,
		State:      el.State,
		Ref:        loc.String(),
		Generation: p.generation,
	}, nil
}

// resolve applies the scripted appearance rules to loc in the current
// frame scope. Callers hold p.mu.
func (p *Page) resolve(loc browser.Locator) (*Element, error) {
	el, ok := p.elements[loc]
	if !ok || el.Frame != p.currentFrame() {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, loc)
	}
	el.Probes++
	if len(el.ProbeErrs) > 0 {
		err := el.ProbeErrs[0]
		el.ProbeErrs = el.ProbeErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if el.Probes <= el.AppearAfter {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, loc)
	}
	return el, nil
}

func (p *Page) lookup(handle *browser.Element) (*Element, error) {
	if handle == nil || handle.Generation != p.generation {
		return nil, browser.ErrStaleElement
	}
	el, ok := p.elements[handle.Locator]
	if !ok {
		return nil, browser.ErrStaleElement
	}
	return el, nil
}

// ScrollIntoView records the scroll.
func (p *Page) ScrollIntoView(ctx context.Context, handle *browser.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.lookup(handle); err != nil {
		return err
	}
	p.record("scroll %s", handle.Locator)
	return nil
}

// Click consumes the next scripted click error, if any, and runs OnClick.
func (p *Page) Click(ctx context.Context, handle *browser.Element, mode browser.ClickMode) error {
	p.mu.Lock()
	el, err := p.lookup(handle)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	el.Clicks++
	if len(el.ClickErrs) > 0 {
		cerr := el.ClickErrs[0]
		el.ClickErrs = el.ClickErrs[1:]
		if cerr != nil {
			p.mu.Unlock()
			return cerr
		}
	}
	p.record("click %s %s", mode, handle.Locator)
	onClick := el.OnClick
	p.mu.Unlock()

	if onClick != nil {
		onClick(p)
	}
	return nil
}

// Clear records the clear.
func (p *Page) Clear(ctx context.Context, handle *browser.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, err := p.lookup(handle)
	if err != nil {
		return err
	}
	el.Cleared++
	p.record("clear %s", handle.Locator)
	return nil
}

// TypeText records the typed text.
func (p *Page) TypeText(ctx context.Context, handle *browser.Element, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, err := p.lookup(handle)
	if err != nil {
		return err
	}
	if el.TypeErr != nil {
		return el.TypeErr
	}
	el.Typed = append(el.Typed, text)
	p.record("type %s", handle.Locator)
	return nil
}

// Submit records the submission.
func (p *Page) Submit(ctx context.Context, handle *browser.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, err := p.lookup(handle)
	if err != nil {
		return err
	}
	if el.SubmitErr != nil {
		return el.SubmitErr
	}
	p.record("submit %s", handle.Locator)
	return nil
}

// Text returns the scripted text.
func (p *Page) Text(ctx context.Context, handle *browser.Element) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, err := p.lookup(handle)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

// EnterFrame pushes loc as the lookup scope. The frame element is resolved
// the same way as any lookup, so it counts towards Probes and honours
// AppearAfter and ProbeErrs.
func (p *Page) EnterFrame(ctx context.Context, loc browser.Locator) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.resolve(loc); err != nil {
		return err
	}
	p.frames = append(p.frames, loc)
	p.record("enter-frame %s", loc)
	return nil
}

// ExitFrame returns to the top-level document.
func (p *Page) ExitFrame(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = nil
	p.record("exit-frame")
	return nil
}

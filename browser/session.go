package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// Session owns one headless browser driven over the DevTools protocol.
// It is not safe for concurrent use beyond what the mutex guards; the
// monitor drives it from a single goroutine.
type Session struct {
	cfg    Config
	logger logger.Logger

	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	mu         sync.Mutex
	generation uint64
	frames     []runtime.RemoteObjectID
	closed     bool

	releaseOnce sync.Once
}

var _ Page = (*Session)(nil)

// Acquire starts a headless browser from the installation under
// cfg.WorkingDir. It returns an *EnvironmentError when the driver or the
// browser binary is missing.
func Acquire(ctx context.Context, cfg Config, log logger.Logger) (*Session, error) {
	cfg = cfg.withDefaults()
	log = log.WithField("component", "browser")

	if err := checkBinaries(cfg.Fs, cfg); err != nil {
		return nil, err
	}
	normalizePermissions(ctx, cfg.Fs, cfg, log)

	log.Info(ctx, "starting browser", map[string]interface{}{
		"driver_path": cfg.DriverPath(),
		"binary_path": cfg.BinaryPath(),
		"window":      fmt.Sprintf("%dx%d", cfg.WindowWidth, cfg.WindowHeight),
	})

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.ExecPath(cfg.BinaryPath()),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	for name, value := range stabilityFlags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	for _, flag := range cfg.ExtraFlags {
		name, value := parseFlag(flag)
		opts = append(opts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(context.Background(), fmt.Sprintf(format, args...), nil)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Warn(context.Background(), fmt.Sprintf(format, args...), nil)
		}),
	)

	// The first Run launches the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		log.Error(ctx, "failed to initialize browser", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info(ctx, "browser initialized", nil)

	return &Session{
		cfg:         cfg,
		logger:      log,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      cancel,
	}, nil
}

// parseFlag splits "--name=value" into its parts. Flags without a value are
// boolean switches.
func parseFlag(flag string) (string, interface{}) {
	flag = strings.TrimLeft(flag, "-")
	if name, value, ok := strings.Cut(flag, "="); ok {
		return name, value
	}
	return flag, true
}

// Release shuts the browser down. It runs at most once, never panics and
// is safe to defer right after a successful Acquire.
func (s *Session) Release() {
	s.releaseOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(context.Background(), "panic while releasing browser", map[string]interface{}{
					"panic": fmt.Sprint(r),
				})
			}
		}()

		s.mu.Lock()
		s.closed = true
		s.frames = nil
		s.mu.Unlock()

		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn(context.Background(), "browser did not close cleanly", map[string]interface{}{
				"error": err.Error(),
			})
		}
		s.cancel()
		s.allocCancel()
		s.logger.Info(context.Background(), "browser released", nil)
	})
}

// run executes actions on the tab, bounded by the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url, bounded by the configured page-load timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.PageLoadTimeout)
	defer cancel()

	s.invalidate()
	if err := s.run(loadCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// Reload reloads the current document and invalidates every handle.
func (s *Session) Reload(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.PageLoadTimeout)
	defer cancel()

	s.invalidate()
	if err := s.run(loadCtx, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return nil
}

// Generation identifies the current document.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) invalidate() {
	s.mu.Lock()
	s.generation++
	s.frames = nil
	s.mu.Unlock()
}

// Probe resolves loc once in the current frame scope.
func (s *Session) Probe(ctx context.Context, loc Locator) (*Element, error) {
	xpath, err := loc.XPath()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	gen := s.generation
	var scope runtime.RemoteObjectID
	if n := len(s.frames); n > 0 {
		scope = s.frames[n-1]
	}
	s.mu.Unlock()

	var el *Element
	err = s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if scope == "" {
			doc, exc, err := runtime.Evaluate("document").Do(ctx)
			if err != nil {
				return err
			}
			if exc != nil {
				return exc
			}
			scope = doc.ObjectID
		}

		obj, err := callFunction(ctx, scope, findScript, false, xpath)
		if err != nil {
			return err
		}
		if obj.ObjectID == "" {
			return ErrNoSuchElement
		}

		var state ElementState
		res, err := callFunction(ctx, obj.ObjectID, stateScript, true)
		if err != nil {
			return err
		}
		if err := decodeValue(res, &state); err != nil {
			return err
		}

		el = &Element{
			Locator:    loc,
			State:      state,
			Ref:        string(obj.ObjectID),
			Generation: gen,
		}
		return nil
	}))
	if err != nil {
		if errors.Is(err, ErrNoSuchElement) {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, loc)
		}
		return nil, err
	}
	return el, nil
}

// ScrollIntoView scrolls el into the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, el *Element) error {
	return s.onElement(ctx, "scroll", el, scrollScript)
}

// Click dispatches a click on el using the requested mode.
func (s *Session) Click(ctx context.Context, el *Element, mode ClickMode) error {
	if mode == ClickProgrammatic {
		return s.onElement(ctx, "click", el, clickScript)
	}
	return s.pointerClick(ctx, "click", el)
}

// Clear empties el's value.
func (s *Session) Clear(ctx context.Context, el *Element) error {
	return s.onElement(ctx, "clear", el, clearScript)
}

// TypeText focuses el with a pointer click and sends text as key events.
func (s *Session) TypeText(ctx context.Context, el *Element, text string) error {
	if err := s.pointerClick(ctx, "type", el); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.KeyEvent(text)); err != nil {
		return &ActionError{Op: "type", Locator: el.Locator, Err: err}
	}
	return nil
}

// Submit submits the form owning el.
func (s *Session) Submit(ctx context.Context, el *Element) error {
	return s.onElement(ctx, "submit", el, submitScript)
}

// Text returns the rendered text of el.
func (s *Session) Text(ctx context.Context, el *Element) (string, error) {
	if err := s.checkFresh(el); err != nil {
		return "", err
	}

	var text string
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, err := callFunction(ctx, runtime.RemoteObjectID(el.Ref), textScript, true)
		if err != nil {
			return err
		}
		return decodeValue(res, &text)
	}))
	if err != nil {
		return "", &ActionError{Op: "read text", Locator: el.Locator, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// EnterFrame scopes later lookups to the document of the frame matched by loc.
func (s *Session) EnterFrame(ctx context.Context, loc Locator) error {
	el, err := s.Probe(ctx, loc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if el.Generation != s.generation {
		return ErrStaleElement
	}
	s.frames = append(s.frames, runtime.RemoteObjectID(el.Ref))
	return nil
}

// ExitFrame returns lookups to the top-level document.
func (s *Session) ExitFrame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
	return nil
}

func (s *Session) checkFresh(el *Element) error {
	if el == nil {
		return fmt.Errorf("%w: nil handle", ErrStaleElement)
	}
	if el.Generation != s.Generation() {
		return fmt.Errorf("%w: %s", ErrStaleElement, el.Locator)
	}
	return nil
}

func (s *Session) onElement(ctx context.Context, op string, el *Element, script string) error {
	if err := s.checkFresh(el); err != nil {
		return err
	}

	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := callFunction(ctx, runtime.RemoteObjectID(el.Ref), script, false)
		return err
	}))
	if err != nil {
		return &ActionError{Op: op, Locator: el.Locator, Err: err}
	}
	return nil
}

// pointerClick moves the cursor to the centre of el and clicks there.
func (s *Session) pointerClick(ctx context.Context, op string, el *Element) error {
	if err := s.checkFresh(el); err != nil {
		return err
	}

	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, err := callFunction(ctx, runtime.RemoteObjectID(el.Ref), centerScript, true)
		if err != nil {
			return err
		}
		var pt struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		if err := decodeValue(res, &pt); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MouseMoved, pt.X, pt.Y).Do(ctx); err != nil {
			return err
		}
		return chromedp.MouseClickXY(pt.X, pt.Y).Do(ctx)
	}))
	if err != nil {
		return &ActionError{Op: op, Locator: el.Locator, Err: err}
	}
	return nil
}

// callFunction invokes fn with `this` bound to the remote object. Arguments
// are inlined as JSON literals.
func callFunction(ctx context.Context, this runtime.RemoteObjectID, fn string, byValue bool, args ...interface{}) (*runtime.RemoteObject, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode script arguments: %w", err)
	}
	if args == nil {
		encoded = []byte("[]")
	}
	decl := fmt.Sprintf("function() { return (%s).apply(this, %s); }", fn, encoded)

	res, exc, err := runtime.CallFunctionOn(decl).
		WithObjectID(this).
		WithReturnByValue(byValue).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if exc != nil {
		return nil, exc
	}
	return res, nil
}

func decodeValue(res *runtime.RemoteObject, out interface{}) error {
	if res == nil || len(res.Value) == 0 {
		return errors.New("script returned no value")
	}
	if err := json.Unmarshal([]byte(res.Value), out); err != nil {
		return fmt.Errorf("failed to decode script result: %w", err)
	}
	return nil
}

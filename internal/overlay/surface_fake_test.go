package overlay

import (
	"context"
	"errors"
	"regexp"
)

// fakeSurface is an in-memory Surface for pipeline and engine tests. State
// transitions are keyed by selector: a successful click swaps in the
// element's afterClick state, mimicking a dismissed overlay.
type fakeSurface struct {
	html  string
	stack []StackEntry

	states     map[string]ElementState
	afterClick map[string]ElementState
	controls   map[string]bool // containers holding an inner accept control
	textClicks int             // how many ClickByText calls succeed

	anyVisible bool
	removeErr  error

	clicked      []string
	escapes      int
	removedCalls int
	removedCount int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		states:     make(map[string]ElementState),
		afterClick: make(map[string]ElementState),
		controls:   make(map[string]bool),
	}
}

func (f *fakeSurface) HTML(context.Context) (string, error) { return f.html, nil }

func (f *fakeSurface) ScanStackingContext(context.Context) ([]StackEntry, error) {
	return f.stack, nil
}

func (f *fakeSurface) Inspect(_ context.Context, selector string) (ElementState, error) {
	return f.states[selector], nil
}

func (f *fakeSurface) ClickControl(ctx context.Context, container string) (bool, error) {
	if !f.controls[container] {
		return false, nil
	}
	f.clicked = append(f.clicked, container)
	f.applyClick(container)
	return true, nil
}

func (f *fakeSurface) Click(_ context.Context, selector string) error {
	state := f.states[selector]
	if !state.Present {
		return errors.New("no element matches " + selector)
	}
	f.clicked = append(f.clicked, selector)
	f.applyClick(selector)
	return nil
}

func (f *fakeSurface) ClickByText(_ context.Context, pattern string) (bool, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return false, err
	}
	if f.textClicks <= 0 {
		return false, nil
	}
	f.textClicks--
	return true, nil
}

func (f *fakeSurface) PressEscape(context.Context) error {
	f.escapes++
	return nil
}

func (f *fakeSurface) Remove(_ context.Context, selectors []string) (int, error) {
	f.removedCalls++
	if f.removeErr != nil {
		return 0, f.removeErr
	}
	return f.removedCount, nil
}

func (f *fakeSurface) AnyVisible(context.Context, []string) (bool, error) {
	return f.anyVisible, nil
}

func (f *fakeSurface) applyClick(selector string) {
	if after, ok := f.afterClick[selector]; ok {
		f.states[selector] = after
	}
}

// addVisible registers a visible element that disappears once clicked.
func (f *fakeSurface) addVisible(selector string, clickable, modalLike bool) {
	f.states[selector] = ElementState{Present: true, Visible: true, Clickable: clickable, ModalLike: modalLike}
	f.afterClick[selector] = ElementState{}
}

// addStubborn registers a visible element that survives every action.
func (f *fakeSurface) addStubborn(selector string, clickable bool) {
	f.states[selector] = ElementState{Present: true, Visible: true, Clickable: clickable}
}

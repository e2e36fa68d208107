package playback

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jwebster45206/novel-script/pkg/command"
)

// MockSurface records every request for tests and keeps a simple model of
// what would be on screen.
type MockSurface struct {
	mu sync.Mutex

	Calls    []string
	Speaker  string
	Body     string
	More     bool
	Finished int
	Created  map[string]int // entity name -> number of creations

	// Errors makes the named method fail, e.g. Errors["LoadSprite"].
	Errors map[string]error

	nextHandle int
}

var _ Surface = (*MockSurface)(nil)

func NewMockSurface() *MockSurface {
	return &MockSurface{
		Created: make(map[string]int),
		Errors:  make(map[string]error),
	}
}

// SetError configures method to fail with err.
func (m *MockSurface) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

func (m *MockSurface) record(format string, args ...any) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

// CallsWithPrefix returns the recorded calls to one method.
func (m *MockSurface) CallsWithPrefix(method string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.Calls {
		if strings.HasPrefix(c, method+"(") {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps configured errors.
func (m *MockSurface) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func (m *MockSurface) LoadSprite(name string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("LoadSprite(%s)", name)
	if err := m.Errors["LoadSprite"]; err != nil {
		return nil, err
	}
	return "sprite:" + name, nil
}

func (m *MockSurface) SetBackground(op command.SubOp, v command.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetBackground(%s, %s)", op, v)
	return m.Errors["SetBackground"]
}

func (m *MockSurface) SetCharacterImage(name string, h Handle, op command.SubOp, v command.Value) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetCharacterImage(%s, %s, %s)", name, op, v)
	if err := m.Errors["SetCharacterImage"]; err != nil {
		return nil, err
	}
	return m.handle(name, h), nil
}

func (m *MockSurface) RemoveCharacterImage(name string, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RemoveCharacterImage(%s)", name)
	return m.Errors["RemoveCharacterImage"]
}

func (m *MockSurface) SetSpeaker(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetSpeaker(%s)", name)
	m.Speaker = name
}

func (m *MockSurface) SetBodyText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetBodyText(%s)", text)
	m.Body = text
}

func (m *MockSurface) AppendBodyCharacter(r rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("AppendBodyCharacter(%c)", r)
	m.Body += string(r)
}

func (m *MockSurface) ShowMoreAffordance(show bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ShowMoreAffordance(%t)", show)
	m.More = show
}

func (m *MockSurface) RegisterChoice(name string, h Handle, op command.SubOp, v command.Value) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RegisterChoice(%s, %s, %s)", name, op, v)
	if err := m.Errors["RegisterChoice"]; err != nil {
		return nil, err
	}
	return m.handle(name, h), nil
}

func (m *MockSurface) RemoveChoice(name string, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RemoveChoice(%s)", name)
	return m.Errors["RemoveChoice"]
}

func (m *MockSurface) ClearChoices() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ClearChoices()")
	return m.Errors["ClearChoices"]
}

func (m *MockSurface) ScriptFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ScriptFinished()")
	m.Finished++
}

func (m *MockSurface) handle(name string, h Handle) Handle {
	if h != nil {
		return h
	}
	m.Created[name]++
	m.nextHandle++
	return fmt.Sprintf("%s#%d", name, m.nextHandle)
}

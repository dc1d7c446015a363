package lesson

// Lesson describes one interactive lesson page of the course.
type Lesson struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Module     string `json:"module"`
	PromptHint string `json:"promptHint,omitempty"`
	Free       bool   `json:"free"`
}

// Module groups lessons into a curriculum block.
type Module struct {
	ID      string   `json:"id"`
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Store exposes curriculum retrieval for HTTP handlers.
type Store interface {
	Modules() []Module
	List() []Lesson
	FindByID(id string) (Lesson, bool)
}

// MemoryStore implements Store with a fixed in-memory curriculum.
type MemoryStore struct {
	modules []Module
	byID    map[string]Lesson
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied modules.
func NewMemoryStore(modules []Module) *MemoryStore {
	byID := make(map[string]Lesson)
	for _, m := range modules {
		for _, l := range m.Lessons {
			byID[l.ID] = l
		}
	}
	return &MemoryStore{modules: modules, byID: byID}
}

// Modules returns the curriculum blocks in course order.
func (s *MemoryStore) Modules() []Module {
	return append([]Module(nil), s.modules...)
}

// List returns every lesson in course order.
func (s *MemoryStore) List() []Lesson {
	var out []Lesson
	for _, m := range s.modules {
		out = append(out, m.Lessons...)
	}
	return out
}

// FindByID looks up a lesson by identifier.
func (s *MemoryStore) FindByID(id string) (Lesson, bool) {
	l, ok := s.byID[id]
	return l, ok
}

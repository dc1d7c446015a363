package lesson

// Seed provides the course curriculum served by the portal.
// Lesson IDs are stable: they key the completed-lessons progress list.
func Seed() []Module {
	return []Module{
		{
			ID:     "intro",
			Number: 1,
			Title:  "Введение в программирование и установка Python",
			Lessons: []Lesson{
				{
					ID:         "python-introduction",
					Title:      "Знакомство с Python",
					Module:     "intro",
					PromptHint: "Расскажи, что такое Python и где он применяется.",
					Free:       true,
				},
				{
					ID:         "python-installation",
					Title:      "Установка Python",
					Module:     "intro",
					PromptHint: "Объясни, как установить Python на Windows и macOS.",
					Free:       true,
				},
			},
		},
		{
			ID:     "basics",
			Number: 2,
			Title:  "Основы программирования на Python",
			Lessons: []Lesson{
				{
					ID:         "variables-introduction",
					Title:      "Переменные и типы данных",
					Module:     "basics",
					PromptHint: "Объясни переменные и базовые типы данных в Python с примерами.",
					Free:       true,
				},
			},
		},
		{
			ID:     "oop",
			Number: 3,
			Title:  "Объектно-ориентированное программирование (ООП)",
			Lessons: []Lesson{
				{
					ID:         "oop-introduction",
					Title:      "Основы ООП",
					Module:     "oop",
					PromptHint: "Объясни классы, объекты и наследование в Python.",
					Free:       true,
				},
			},
		},
		{
			ID:     "modules",
			Number: 4,
			Title:  "Работа с модулями и файлами",
			Lessons: []Lesson{
				{
					ID:         "modules-introduction",
					Title:      "Модули и пакеты",
					Module:     "modules",
					PromptHint: "Объясни импорт модулей и создание пакетов в Python.",
					Free:       true,
				},
			},
		},
		{
			ID:     "databases",
			Number: 5,
			Title:  "Работа с базами данных",
			Lessons: []Lesson{
				{ID: "sqlite-sql", Title: "SQLite и SQL", Module: "databases"},
			},
		},
		{
			ID:     "web",
			Number: 6,
			Title:  "Основы веб-разработки на Python",
			Lessons: []Lesson{
				{ID: "flask-introduction", Title: "Введение во Flask", Module: "web"},
			},
		},
		{
			ID:     "testing",
			Number: 7,
			Title:  "Тестирование кода",
			Lessons: []Lesson{
				{ID: "unittest-basics", Title: "Тесты с unittest", Module: "testing"},
			},
		},
		{
			ID:     "advanced",
			Number: 8,
			Title:  "Продвинутые темы",
			Lessons: []Lesson{
				{ID: "async-programming", Title: "Асинхронное программирование", Module: "advanced"},
			},
		},
		{
			ID:     "projects",
			Number: 9,
			Title:  "Финальные проекты",
			Lessons: []Lesson{
				{ID: "final-projects", Title: "Проекты", Module: "projects"},
			},
		},
	}
}

package questiongen

// Exam boards whose question style can be requested.
var Sources = []string{"FGV", "FCC", "CESPE", "Vunesp", "Cebraspe"}

// Subjects available for practice.
var Subjects = []string{
	"Português",
	"Direito Constitucional",
	"Direito Administrativo",
	"Raciocínio Lógico",
	"Informática",
}

// Difficulties, easiest first.
var Difficulties = []string{"Fácil", "Médio", "Difícil"}

// OptionIDs are the labels assigned to alternatives, in order.
var OptionIDs = []string{"A", "B", "C", "D", "E"}

// IsSource reports whether s is a known exam board.
func IsSource(s string) bool { return contains(Sources, s) }

// IsSubject reports whether s is a known subject.
func IsSubject(s string) bool { return contains(Subjects, s) }

// IsDifficulty reports whether s is a known difficulty label.
func IsDifficulty(s string) bool { return contains(Difficulties, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

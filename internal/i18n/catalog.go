package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Key identifies a translatable message.
type Key string

// Notification keys, one per failing gateway operation.
const (
	ErrLoadEmployees    Key = "error.load-employees"
	ErrCreateEmployee   Key = "error.create-employees"
	ErrUpdateEmployee   Key = "error.update-employees"
	ErrRemoveEmployee   Key = "error.remove-employees"
	ErrLoadProjects     Key = "error.load-projects"
	ErrCreateProject    Key = "error.create-project"
	ErrUpdateProject    Key = "error.update-project"
	ErrRemoveProject    Key = "error.remove-project"
	ErrLoadAssignments  Key = "error.load-assignments"
	ErrCreateAssignment Key = "error.create-assignment"
	ErrDeleteAssignment Key = "error.delete-assignment"

	// ChatFallback replaces the assistant reply when the chat call fails.
	ChatFallback Key = "chat.fallback"
)

// Keys lists every catalog key.
var Keys = []Key{
	ErrLoadEmployees, ErrCreateEmployee, ErrUpdateEmployee, ErrRemoveEmployee,
	ErrLoadProjects, ErrCreateProject, ErrUpdateProject, ErrRemoveProject,
	ErrLoadAssignments, ErrCreateAssignment, ErrDeleteAssignment,
	ChatFallback,
}

var translations = map[language.Tag]map[Key]string{
	language.English: {
		ErrLoadEmployees:    "Employees could not be loaded.",
		ErrCreateEmployee:   "Employee could not be created.",
		ErrUpdateEmployee:   "Employee could not be updated.",
		ErrRemoveEmployee:   "Employee could not be removed.",
		ErrLoadProjects:     "Projects could not be loaded.",
		ErrCreateProject:    "Project could not be created.",
		ErrUpdateProject:    "Project could not be updated.",
		ErrRemoveProject:    "Project could not be removed.",
		ErrLoadAssignments:  "Assignments could not be loaded.",
		ErrCreateAssignment: "Assignment could not be created.",
		ErrDeleteAssignment: "Assignment could not be deleted.",
		ChatFallback:        "Sorry, I encountered an error. Please try again later.",
	},
	language.German: {
		ErrLoadEmployees:    "Mitarbeitende konnten nicht geladen werden.",
		ErrCreateEmployee:   "Mitarbeiter:in konnte nicht erstellt werden.",
		ErrUpdateEmployee:   "Mitarbeiter:in konnte nicht aktualisiert werden.",
		ErrRemoveEmployee:   "Mitarbeiter:in konnte nicht entfernt werden.",
		ErrLoadProjects:     "Projekte konnten nicht geladen werden.",
		ErrCreateProject:    "Projekt konnte nicht erstellt werden.",
		ErrUpdateProject:    "Projekt konnte nicht aktualisiert werden.",
		ErrRemoveProject:    "Projekt konnte nicht entfernt werden.",
		ErrLoadAssignments:  "Einsätze konnten nicht geladen werden.",
		ErrCreateAssignment: "Einsatz konnte nicht erstellt werden.",
		ErrDeleteAssignment: "Einsatz konnte nicht gelöscht werden.",
		ChatFallback:        "Entschuldigung, es ist ein Fehler aufgetreten. Bitte versuche es später erneut.",
	},
	language.French: {
		ErrLoadEmployees:    "Les collaborateurs n'ont pas pu être chargés.",
		ErrCreateEmployee:   "Le collaborateur n'a pas pu être créé.",
		ErrUpdateEmployee:   "Le collaborateur n'a pas pu être mis à jour.",
		ErrRemoveEmployee:   "Le collaborateur n'a pas pu être supprimé.",
		ErrLoadProjects:     "Les projets n'ont pas pu être chargés.",
		ErrCreateProject:    "Le projet n'a pas pu être créé.",
		ErrUpdateProject:    "Le projet n'a pas pu être mis à jour.",
		ErrRemoveProject:    "Le projet n'a pas pu être supprimé.",
		ErrLoadAssignments:  "Les affectations n'ont pas pu être chargées.",
		ErrCreateAssignment: "L'affectation n'a pas pu être créée.",
		ErrDeleteAssignment: "L'affectation n'a pas pu être supprimée.",
		ChatFallback:        "Désolé, une erreur est survenue. Veuillez réessayer plus tard.",
	},
	language.Italian: {
		ErrLoadEmployees:    "Non è stato possibile caricare i collaboratori.",
		ErrCreateEmployee:   "Non è stato possibile creare il collaboratore.",
		ErrUpdateEmployee:   "Non è stato possibile aggiornare il collaboratore.",
		ErrRemoveEmployee:   "Non è stato possibile rimuovere il collaboratore.",
		ErrLoadProjects:     "Non è stato possibile caricare i progetti.",
		ErrCreateProject:    "Non è stato possibile creare il progetto.",
		ErrUpdateProject:    "Non è stato possibile aggiornare il progetto.",
		ErrRemoveProject:    "Non è stato possibile rimuovere il progetto.",
		ErrLoadAssignments:  "Non è stato possibile caricare le assegnazioni.",
		ErrCreateAssignment: "Non è stato possibile creare l'assegnazione.",
		ErrDeleteAssignment: "Non è stato possibile eliminare l'assegnazione.",
		ChatFallback:        "Spiacente, si è verificato un errore. Riprova più tardi.",
	},
}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			// Texts carry no format verbs; SetString only fails on malformed input.
			_ = b.SetString(tag, string(key), text)
		}
	}
	return b
}

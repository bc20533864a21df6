package ports

import (
	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// NoticeLevel classifies a user-visible acknowledgment
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeAlert   NoticeLevel = "alert"
)

// Notifier surfaces acknowledgments to the user (toast, alert, terminal line)
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(level NoticeLevel, message string)

// Notify implements Notifier
func (f NotifierFunc) Notify(level NoticeLevel, message string) {
	f(level, message)
}

// Navigator moves the user between the editor and the archive listing
type Navigator interface {
	// ToEditor replaces the current location with the editor for id
	ToEditor(id entities.DocumentID)

	// ToArchive returns to the listing view
	ToArchive()
}

// NopNavigator ignores navigation requests
type NopNavigator struct{}

// ToEditor implements Navigator
func (NopNavigator) ToEditor(entities.DocumentID) {}

// ToArchive implements Navigator
func (NopNavigator) ToArchive() {}

var (
	_ Notifier  = NotifierFunc(nil)
	_ Navigator = NopNavigator{}
)

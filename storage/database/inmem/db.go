// Package inmemdb holds in-memory repositories, used by the API tests and when no database is configured.
package inmemdb

import (
	"sync"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

type (
	registrationTable struct {
		mutex sync.RWMutex
		table map[string]*registration.Registration
		// fail makes every call return the error (simulates an unreachable store)
		fail error
	}

	accountTable struct {
		mutex sync.RWMutex
		table map[string]*account.Account
	}

	learningTables struct {
		mutex    sync.RWMutex
		sessions map[string]*learning.Session // by token
		progress map[progressKey]learning.LessonRecord
	}

	progressKey struct {
		volunteerID, module, lesson string
	}

	DB struct {
		registration *registrationTable
		account      *accountTable
		learning     *learningTables
	}
)

func NewDB() *DB {
	return &DB{
		registration: &registrationTable{table: make(map[string]*registration.Registration)},
		account:      &accountTable{table: make(map[string]*account.Account)},
		learning: &learningTables{
			sessions: make(map[string]*learning.Session),
			progress: make(map[progressKey]learning.LessonRecord),
		},
	}
}

// FailRegistrations makes every registration call fail with `err` (nil restores them).
func (db *DB) FailRegistrations(err error) {
	db.registration.mutex.Lock()
	defer db.registration.mutex.Unlock()
	db.registration.fail = err
}

// Reset empties every table.
func (db *DB) Reset() {
	db.registration.mutex.Lock()
	db.registration.table = make(map[string]*registration.Registration)
	db.registration.fail = nil
	db.registration.mutex.Unlock()

	db.account.mutex.Lock()
	db.account.table = make(map[string]*account.Account)
	db.account.mutex.Unlock()

	db.learning.mutex.Lock()
	db.learning.sessions = make(map[string]*learning.Session)
	db.learning.progress = make(map[progressKey]learning.LessonRecord)
	db.learning.mutex.Unlock()
}

package forms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/database/databasetest"
	"github.com/mbolis/promo-forms/model"
	"github.com/mbolis/promo-forms/notify"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	msgs []notify.Message
	full bool
}

func (d *fakeDispatcher) Dispatch(msg notify.Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return false
	}
	d.msgs = append(d.msgs, msg)
	return true
}

type fixture struct {
	db        *sqlx.DB
	registry  *Registry
	recorder  *Recorder
	projector *Projector
	notified  *fakeDispatcher
	programID int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := databasetest.Open(t)
	d := &fakeDispatcher{}
	f := fixture{
		db:        db,
		registry:  NewRegistry(db),
		recorder:  NewRecorder(db, d),
		projector: NewProjector(db),
		notified:  d,
	}

	p, err := f.registry.CreateProgram(context.Background(), "Ramadan Draw", 1)
	require.NoError(t, err)
	f.programID = p.ID
	return f
}

func (f fixture) define(t *testing.T, specs ...model.FieldSpec) model.DynamicForm {
	t.Helper()

	form, err := f.registry.DefineForm(context.Background(), f.programID, specs)
	require.NoError(t, err)
	return form
}

func requireKind[E error](t *testing.T, err error) E {
	t.Helper()

	var target E
	require.Error(t, err)
	require.Truef(t, errors.As(err, &target), "want %T, got %T: %v", target, err, err)
	return target
}

var (
	nameSpec  = model.FieldSpec{Type: model.FieldText, Label: "Name", Required: true}
	phoneSpec = model.FieldSpec{Type: model.FieldPhone, Label: "Phone"}
)

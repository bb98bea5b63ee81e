package forms

import (
	"context"
	"testing"

	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineFormStoresOrderedFields(t *testing.T) {
	f := newFixture(t)

	form := f.define(t,
		nameSpec,
		phoneSpec,
		model.FieldSpec{Type: model.FieldChoice, Label: "  T-shirt size ", Options: []string{"S", "M", "L"}},
	)

	assert.True(t, form.IsActive)
	assert.Equal(t, 1, form.Version)
	require.Len(t, form.Fields, 3)

	loaded, err := f.registry.Form(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.Fields, loaded.Fields)
	assert.Equal(t, "T-shirt size", loaded.Fields[2].Label)
	assert.Equal(t, "t_shirt_size", loaded.Fields[2].Name)
	assert.Equal(t, []string{"S", "M", "L"}, loaded.Fields[2].Options)
	for i, field := range loaded.Fields {
		assert.Equal(t, i, field.Position)
	}
}

func TestDefineFormKeepsOneActiveFormPerProgram(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var forms []model.DynamicForm
	for i := 0; i < 4; i++ {
		forms = append(forms, f.define(t, nameSpec))
	}

	var active int
	require.NoError(t, f.db.Get(&active, `SELECT COUNT(*) FROM dynamic_form WHERE program_id = ? AND is_active = 1`, f.programID))
	assert.Equal(t, 1, active)

	current, err := f.registry.ActiveForm(ctx, f.programID)
	require.NoError(t, err)
	assert.Equal(t, forms[3].ID, current.ID)
	assert.Equal(t, 4, current.Version)

	old, err := f.registry.Form(ctx, forms[0].ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	// another program is untouched
	other, err := f.registry.CreateProgram(ctx, "Other", 2)
	require.NoError(t, err)
	_, err = f.registry.DefineForm(ctx, other.ID, []model.FieldSpec{nameSpec})
	require.NoError(t, err)
	current, err = f.registry.ActiveForm(ctx, f.programID)
	require.NoError(t, err)
	assert.Equal(t, forms[3].ID, current.ID)
}

func TestDefineFormValidatesSpecs(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.DefineForm(context.Background(), f.programID, []model.FieldSpec{
		{Type: model.FieldText, Label: "   "},
		{Type: "signature", Label: "Sign here"},
		{Type: model.FieldMultichoice, Label: "Toppings"},
		{Type: model.FieldNumber, Label: "Age"},
	})
	ve := requireKind[*errs.ValidationError](t, err)
	assert.Equal(t, []string{"fields[0].label", "fields[1].type", "fields[2].options"}, ve.Fields)

	_, err = f.registry.DefineForm(context.Background(), f.programID, nil)
	requireKind[*errs.ValidationError](t, err)

	// nothing was written
	_, err = f.registry.ActiveForm(context.Background(), f.programID)
	requireKind[*errs.NotFoundError](t, err)
}

func TestDefineFormUnknownProgram(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.DefineForm(context.Background(), 999, []model.FieldSpec{nameSpec})
	nf := requireKind[*errs.NotFoundError](t, err)
	assert.Equal(t, "program", nf.Entity)
}

func TestFieldNamesAreUnique(t *testing.T) {
	names := fieldNames([]model.FieldSpec{
		{Label: "Full name"},
		{Label: "Full  name!"},
		{Label: "full_name"},
		{Label: "!!!"},
	})
	assert.Equal(t, []string{"full_name", "full_name__1", "full_name__2", "field"}, names)
}

func TestDeleteField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.define(t, nameSpec, phoneSpec)
	name, phone := form.Fields[0].ID, form.Fields[1].ID

	_, err := f.recorder.Record(ctx, form.ID, map[int64]string{name: "Akbar"})
	require.NoError(t, err)

	err = f.registry.DeleteField(ctx, name)
	requireKind[*errs.ConflictError](t, err)

	require.NoError(t, f.registry.DeleteField(ctx, phone))
	loaded, err := f.registry.Form(ctx, form.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Fields, 1)

	err = f.registry.DeleteField(ctx, phone)
	requireKind[*errs.NotFoundError](t, err)
}

func TestPrograms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second, err := f.registry.CreateProgram(ctx, "Second", 0)
	require.NoError(t, err)
	_, err = f.registry.CreateProgram(ctx, "Draft only", 5)
	require.NoError(t, err)

	require.NoError(t, f.registry.SetProgramStatus(ctx, f.programID, model.ProgramPublished))
	require.NoError(t, f.registry.SetProgramStatus(ctx, second.ID, model.ProgramPublished))

	published, err := f.registry.PublishedPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "Second", published[0].Name)
	assert.Equal(t, "Ramadan Draw", published[1].Name)

	err = f.registry.SetProgramStatus(ctx, 404, model.ProgramPublished)
	requireKind[*errs.NotFoundError](t, err)

	err = f.registry.SetProgramStatus(ctx, second.ID, "archived")
	requireKind[*errs.ValidationError](t, err)

	_, err = f.registry.CreateProgram(ctx, " ", 0)
	requireKind[*errs.ValidationError](t, err)
}

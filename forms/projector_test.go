package forms

import (
	"context"
	"testing"

	"github.com/mbolis/promo-forms/database/databasetest"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRoundTripsAnswersByLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.define(t,
		nameSpec,
		phoneSpec,
		model.FieldSpec{Type: model.FieldNumber, Label: "Age"},
		model.FieldSpec{Type: model.FieldTextarea, Label: "Why you?"},
	)

	cases := []map[int64]string{
		{form.Fields[3].ID: "because", form.Fields[0].ID: "Akbar", form.Fields[2].ID: "30"},
		{form.Fields[1].ID: "08123456789", form.Fields[0].ID: "Sari"},
		{form.Fields[0].ID: "Budi", form.Fields[1].ID: "+6281234567", form.Fields[2].ID: "41", form.Fields[3].ID: "luck"},
	}
	for _, answers := range cases {
		sub, err := f.recorder.Record(ctx, form.ID, answers)
		require.NoError(t, err)

		proj, err := f.projector.Project(ctx, sub.ID)
		require.NoError(t, err)

		want := map[string]string{}
		for _, field := range form.Fields {
			if v, ok := answers[field.ID]; ok {
				want[field.Label] = v
			}
		}
		assert.Equal(t, want, proj.ByLabel())
		assert.Equal(t, sub.ID, proj.Submission.ID)
	}
}

func TestProjectOrdersByFieldPosition(t *testing.T) {
	f := newFixture(t)
	form := f.define(t, nameSpec, phoneSpec, model.FieldSpec{Type: model.FieldText, Label: "City"})

	// values inserted in reverse field order
	subID := databasetest.Exec(t, f.db, `INSERT INTO form_submission (form_id, created_at) VALUES (?, CURRENT_TIMESTAMP)`, form.ID)
	for i := len(form.Fields) - 1; i >= 0; i-- {
		databasetest.Exec(t, f.db, `INSERT INTO submission_value (submission_id, field_id, value) VALUES (?, ?, ?)`,
			subID, form.Fields[i].ID, form.Fields[i].Label+" answer")
	}

	proj, err := f.projector.Project(context.Background(), subID)
	require.NoError(t, err)

	var labels []string
	for a := range proj.All() {
		labels = append(labels, *a.Label)
	}
	assert.Equal(t, []string{"Name", "Phone", "City"}, labels)
	assert.Equal(t, model.FieldPhone, proj.Answers[1].FieldType)
	assert.Equal(t, "phone", proj.Answers[1].Name)
}

func TestProjectSurvivesRemovedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.define(t, nameSpec, phoneSpec)

	sub, err := f.recorder.Record(ctx, form.ID, map[int64]string{
		form.Fields[0].ID: "Akbar",
		form.Fields[1].ID: "08123456789",
	})
	require.NoError(t, err)

	// bypass the registry guard to simulate schema drift
	f.db.MustExec(`DELETE FROM form_field WHERE id = ?`, form.Fields[0].ID)

	proj, err := f.projector.Project(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, proj.Answers, 2)

	assert.Equal(t, "Phone", *proj.Answers[0].Label)
	assert.Nil(t, proj.Answers[1].Label)
	assert.Equal(t, form.Fields[0].ID, proj.Answers[1].FieldID)
	assert.Equal(t, "Akbar", proj.Answers[1].Value)
}

func TestProjectUnknownSubmission(t *testing.T) {
	f := newFixture(t)

	_, err := f.projector.Project(context.Background(), 77)
	requireKind[*errs.NotFoundError](t, err)
}

func TestProjectForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.define(t, model.FieldSpec{Type: model.FieldText, Label: "Nickname"}, phoneSpec)

	first, err := f.recorder.Record(ctx, form.ID, map[int64]string{form.Fields[1].ID: "08123456789", form.Fields[0].ID: "aki"})
	require.NoError(t, err)
	empty, err := f.recorder.Record(ctx, form.ID, map[int64]string{})
	require.NoError(t, err)

	projections, err := f.projector.ProjectForm(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, projections, 2)

	assert.Equal(t, first.ID, projections[0].Submission.ID)
	assert.Equal(t, map[string]string{"Nickname": "aki", "Phone": "08123456789"}, projections[0].ByLabel())
	assert.Equal(t, "Nickname", *projections[0].Answers[0].Label)

	assert.Equal(t, empty.ID, projections[1].Submission.ID)
	assert.Empty(t, projections[1].Answers)

	_, err = f.projector.ProjectForm(ctx, 404)
	requireKind[*errs.NotFoundError](t, err)
}

package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillGroups_PreservesInsertionOrder(t *testing.T) {
	raw := `{"Languages":["Go","Python"],"Cloud":["AWS"],"Databases":["PostgreSQL","Redis"]}`

	var g SkillGroups
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	assert.Equal(t, []string{"Languages", "Cloud", "Databases"}, g.Names())

	skills, ok := g.Get("Databases")
	require.True(t, ok)
	assert.Equal(t, []string{"PostgreSQL", "Redis"}, skills)

	out, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
	assert.Equal(t, raw, string(out), "key order must survive a round trip")
}

func TestSkillGroups_RejectsArray(t *testing.T) {
	var g SkillGroups
	err := json.Unmarshal([]byte(`["Go","Python"]`), &g)
	assert.Error(t, err)
}

func TestSkillGroups_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var g SkillGroups
	require.NoError(t, json.Unmarshal([]byte(`{"A":["x"],"B":["y"],"A":["z"]}`), &g))
	assert.Equal(t, []string{"A", "B"}, g.Names())
	skills, _ := g.Get("A")
	assert.Equal(t, []string{"z"}, skills)
}

func TestSkillGroups_NonEmpty(t *testing.T) {
	g := SkillGroups{{Name: "A", Skills: []string{"x"}}, {Name: "Empty"}, {Name: "B", Skills: []string{"y"}}}
	assert.Equal(t, []string{"A", "B"}, g.NonEmpty().Names())
}

func TestCuratedCV_OmitsAbsentFields(t *testing.T) {
	cv := CuratedCV{Name: "Ada Lovelace"}
	out, err := json.Marshal(cv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada Lovelace"}`, string(out))
}

func TestExtractedCV_CloneIsIndependent(t *testing.T) {
	orig := &ExtractedCV{
		Name:           "Ada",
		Skills:         []string{"Go"},
		WorkExperience: []WorkExperience{{Title: "Engineer", Description: []string{"built things"}}},
	}
	cp := orig.Clone()
	cp.Skills[0] = "Rust"
	cp.WorkExperience[0].Description[0] = "changed"
	cp.ContactInfo.Email = "x@example.com"

	assert.Equal(t, "Go", orig.Skills[0])
	assert.Equal(t, "built things", orig.WorkExperience[0].Description[0])
	assert.Empty(t, orig.ContactInfo.Email)
}

func TestCuratedCV_CloneIsIndependent(t *testing.T) {
	orig := &CuratedCV{Skills: SkillGroups{{Name: "Languages", Skills: []string{"Go"}}}}
	cp := orig.Clone()
	cp.Skills[0].Skills[0] = "Rust"
	assert.Equal(t, "Go", orig.Skills[0].Skills[0])
}

func TestStageError_Classification(t *testing.T) {
	cause := fmt.Errorf("upstream: %w", context.DeadlineExceeded)
	err := fmt.Errorf("pipeline: %w", NewCollaboratorError(StageExtract, "generate failed", cause))

	assert.True(t, errors.Is(err, ErrCollaborator))
	assert.False(t, errors.Is(err, ErrSchemaViolation))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "collaborator_failure", ErrorKind(err))
	assert.Equal(t, StageExtract, StageOf(err))

	assert.Equal(t, "validation_error", ErrorKind(NewValidationError("missing photo")))
	assert.Equal(t, "schema_violation", ErrorKind(NewSchemaViolation(StageCurate, "bad json", nil)))
	assert.Equal(t, "internal_error", ErrorKind(errors.New("boom")))
	assert.Equal(t, "", ErrorKind(nil))
}

func TestStageError_Message(t *testing.T) {
	se := NewSchemaViolation(StageCurate, "trailing data", nil).(*StageError).WithRequestID("req-1")
	assert.Equal(t, "schema violation (stage:curate, request:req-1): trailing data", se.Error())
}

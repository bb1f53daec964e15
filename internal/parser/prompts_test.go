package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tailor-go/internal/types"
)

func TestBuildExtractionMessages(t *testing.T) {
	raw := "Jane Doe\nBackend engineer, uses {{templates}} and \"quotes\""
	msgs, err := BuildExtractionMessages(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `"skills": ["string"]`)
	assert.Contains(t, msgs[0].Content, "omit that field entirely")
	assert.Contains(t, msgs[0].Content, "exactly one JSON object")

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, raw, "raw text must pass through untouched")

	again, err := BuildExtractionMessages(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, msgs, again)
}

func TestBuildCurationMessages(t *testing.T) {
	cv := &types.ExtractedCV{Name: "Jane Doe", Skills: []string{"Go", "Excel"}}

	t.Run("with user summary", func(t *testing.T) {
		msgs, err := BuildCurationMessages(context.Background(), cv, "Backend Engineer", "I build reliable systems.")
		require.NoError(t, err)
		require.Len(t, msgs, 2)

		sys := msgs[0].Content
		assert.Contains(t, sys, "target job title: Backend Engineer")
		assert.Contains(t, sys, `"skills": {"Category Name": ["string"]}`)
		assert.Contains(t, sys, "at most 2 description bullets per job")
		assert.Contains(t, sys, "Candidate summary: I build reliable systems.")
		assert.Contains(t, msgs[1].Content, `"name": "Jane Doe"`)
	})

	t.Run("curation rules", func(t *testing.T) {
		msgs, err := BuildCurationMessages(context.Background(), cv, "Backend Engineer", "")
		require.NoError(t, err)
		sys := msgs[0].Content

		// 相关性：教育经历也要按目标岗位筛选，整段无相关项时省略
		assert.Contains(t, sys, `keep only work experience, projects, certifications and education entries that are relevant to "Backend Engineer"`)
		assert.Contains(t, sys, "omit the whole section key")
		assert.Contains(t, sys, "Never output an empty array")
		assert.Contains(t, sys, "Keep name and contactInfo as given")
		assert.NotContains(t, sys, "education as given")

		// 压缩
		assert.Contains(t, sys, "at most 2 description bullets per job")
		assert.Contains(t, sys, "quantifiable or role-relevant achievement")
		assert.Contains(t, sys, "Project descriptions are 1 to 2 lines")
		assert.Contains(t, sys, "one line of value statement")

		// 技能分组
		assert.Contains(t, sys, "group them into categories")
		assert.Contains(t, sys, "Never output a category with no skills")

		// 摘要
		assert.Contains(t, sys, "2 to 3 sentence professional summary")

		// 不得编造
		assert.Contains(t, sys, "Do not invent facts")
	})

	t.Run("without user summary", func(t *testing.T) {
		msgs, err := BuildCurationMessages(context.Background(), cv, "Backend Engineer", "  ")
		require.NoError(t, err)
		assert.NotContains(t, msgs[0].Content, "Candidate summary:")
		assert.True(t, strings.Contains(msgs[0].Content, "based only on facts in the CV"))
	})
}

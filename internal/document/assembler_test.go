package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tailor-go/internal/types"
)

var testPhoto = types.PhotoPayload{MimeType: "image/jpeg", Data: "AAAA"}

func fullCV() *types.CuratedCV {
	return &types.CuratedCV{
		Name:  "Jane Doe",
		Title: "Backend Engineer",
		ContactInfo: types.ContactInfo{
			Email:    "jane@example.com",
			Phone:    "+49 30 1234",
			Location: "Berlin",
			LinkedIn: "https://www.linkedin.com/in/janedoe/",
			GitHub:   "https://github.com/janedoe",
		},
		Summary: "Backend engineer focused on Go services.",
		WorkExperience: []types.WorkExperience{{
			Title:       "Senior Engineer",
			Company:     "Acme",
			Location:    "Berlin",
			Dates:       "2020 - Present",
			Description: []string{"Built the billing service", "Cut p99 latency by 40%"},
		}},
		Education: []types.Education{{Institution: "TU Berlin", Degree: "MSc Computer Science", Dates: "2014 - 2016"}},
		Skills: types.SkillGroups{
			{Name: "Languages", Skills: []string{"Go", "SQL"}},
			{Name: "Infrastructure", Skills: []string{"Kubernetes"}},
		},
		Projects:       []types.Project{{Name: "cv-tailor", Description: "CV generator", URL: "https://github.com/janedoe/cv-tailor"}},
		Certifications: []types.Certification{{Name: "CKA", Issuer: "CNCF", Date: "2022"}},
	}
}

func TestAssemble_SectionOrder(t *testing.T) {
	html, err := NewHTMLAssembler().Assemble(fullCV(), testPhoto)
	require.NoError(t, err)

	order := []string{
		"<h1>Jane Doe</h1>",
		`class="summary"`,
		`class="skills"`,
		`class="experience"`,
		`class="projects"`,
		`class="certifications"`,
		`class="education"`,
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(html, marker)
		require.NotEqual(t, -1, idx, "缺少区块 %s", marker)
		assert.Greater(t, idx, last, "区块 %s 顺序错误", marker)
		last = idx
	}
}

func TestAssemble_OmitsEmptySections(t *testing.T) {
	cv := &types.CuratedCV{Name: "Jane Doe"}
	html, err := NewHTMLAssembler().Assemble(cv, testPhoto)
	require.NoError(t, err)

	for _, section := range []string{"summary", "skills", "experience", "projects", "certifications", "education"} {
		assert.NotContains(t, html, `class="`+section+`"`, "空区块 %s 不应输出", section)
	}
	assert.NotContains(t, html, `class="contact"`)
	assert.NotContains(t, html, `class="title"`)
}

func TestAssemble_EmptySkillCategoriesOnly(t *testing.T) {
	cv := &types.CuratedCV{Name: "Jane", Skills: types.SkillGroups{{Name: "Tools", Skills: nil}}}
	html, err := NewHTMLAssembler().Assemble(cv, testPhoto)
	require.NoError(t, err)
	assert.NotContains(t, html, `class="skills"`)
}

func TestAssemble_BulletsAndSkillOrder(t *testing.T) {
	html, err := NewHTMLAssembler().Assemble(fullCV(), testPhoto)
	require.NoError(t, err)

	assert.Contains(t, html, "<ol>")
	first := strings.Index(html, "Built the billing service")
	second := strings.Index(html, "Cut p99 latency by 40%")
	assert.True(t, first > 0 && second > first, "要点应按输入顺序输出")

	langs := strings.Index(html, "Languages:")
	infra := strings.Index(html, "Infrastructure:")
	assert.True(t, langs > 0 && infra > langs, "技能类别应保持插入顺序")
	assert.Contains(t, html, "Go, SQL")
}

func TestAssemble_PhotoAndContacts(t *testing.T) {
	html, err := NewHTMLAssembler().Assemble(fullCV(), testPhoto)
	require.NoError(t, err)

	assert.Contains(t, html, `src="data:image/jpeg;base64,AAAA"`)
	assert.Contains(t, html, `href="mailto:jane@example.com"`)
	assert.Contains(t, html, "linkedin.com/in/janedoe</a>")
	assert.Contains(t, html, "github.com/janedoe</a>")
	assert.Contains(t, html, "Berlin")
}

func TestAssemble_EscapesContent(t *testing.T) {
	cv := &types.CuratedCV{
		Name:        `<script>alert(1)</script>`,
		ContactInfo: types.ContactInfo{Portfolio: "javascript:alert(1)"},
	}
	html, err := NewHTMLAssembler().Assemble(cv, testPhoto)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, `href="javascript:`)
}

func TestAssemble_DoesNotMutate(t *testing.T) {
	cv := fullCV()
	before := cv.Clone()
	_, err := NewHTMLAssembler().Assemble(cv, testPhoto)
	require.NoError(t, err)
	assert.Equal(t, before, cv)
}

func TestAssemble_NilRecord(t *testing.T) {
	_, err := NewHTMLAssembler().Assemble(nil, testPhoto)
	assert.Error(t, err)
}

func TestPhotoURL(t *testing.T) {
	assert.Equal(t, "", string(photoURL(types.PhotoPayload{})))
	assert.Equal(t, "data:image/png;base64,xyz", string(photoURL(types.PhotoPayload{Data: "xyz"})))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane Doe", "Jane_Doe_CV.pdf"},
		{"  Jane   Mary  Doe ", "Jane_Mary_Doe_CV.pdf"},
		{"Anne-Marie O'Neil", "Anne-Marie_ONeil_CV.pdf"},
		{"../../etc/passwd", "etcpasswd_CV.pdf"},
		{"José Núñez", "José_Núñez_CV.pdf"},
		{"", "CV.pdf"},
		{"  ", "CV.pdf"},
		{"!!!", "CV.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.name))
		})
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="Jane_Doe_CV.pdf"`, ContentDisposition("Jane_Doe_CV.pdf"))
	assert.Contains(t, ContentDisposition("José_CV.pdf"), "filename*=utf-8''Jos%C3%A9_CV.pdf")
}

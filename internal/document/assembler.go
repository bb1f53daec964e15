package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"cv-tailor-go/internal/types"
)

//go:embed templates/cv.html.tmpl
var cvTemplateText string

var cvTemplate = template.Must(template.New("cv").Funcs(template.FuncMap{
	"join":       strings.Join,
	"displayURL": displayURL,
}).Parse(cvTemplateText))

// HTMLAssembler 把精选后的简历和头像展开成一份完整的 HTML 文档
type HTMLAssembler struct {
	tmpl *template.Template
}

// NewHTMLAssembler 使用内置模板创建 HTMLAssembler
func NewHTMLAssembler() *HTMLAssembler {
	return &HTMLAssembler{tmpl: cvTemplate}
}

type contactItem struct {
	Text string
	Href string
}

type cvView struct {
	CV      *types.CuratedCV
	Contact []contactItem
	Skills  types.SkillGroups
	Photo   template.URL
}

// Assemble 渲染 HTML。不修改传入的记录，空字段对应的区块不输出
func (a *HTMLAssembler) Assemble(cv *types.CuratedCV, photo types.PhotoPayload) (string, error) {
	if cv == nil {
		return "", fmt.Errorf("简历记录为空")
	}

	view := cvView{
		CV:      cv,
		Contact: contactItems(cv.ContactInfo),
		Skills:  cv.Skills.NonEmpty(),
		Photo:   photoURL(photo),
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("渲染简历模板失败: %w", err)
	}
	return buf.String(), nil
}

// photoURL 原样拼接 data URI，图片内容不做解码
func photoURL(photo types.PhotoPayload) template.URL {
	if photo.IsEmpty() {
		return ""
	}
	mimeType := strings.TrimSpace(photo.MimeType)
	if mimeType == "" {
		mimeType = "image/png"
	}
	return template.URL("data:" + mimeType + ";base64," + photo.Data)
}

func contactItems(c types.ContactInfo) []contactItem {
	var items []contactItem
	if c.Email != "" {
		items = append(items, contactItem{Text: c.Email, Href: "mailto:" + c.Email})
	}
	if c.Phone != "" {
		items = append(items, contactItem{Text: c.Phone})
	}
	if c.Location != "" {
		items = append(items, contactItem{Text: c.Location})
	}
	for _, link := range []string{c.LinkedIn, c.GitHub, c.Portfolio} {
		if link != "" {
			items = append(items, contactItem{Text: displayURL(link), Href: link})
		}
	}
	return items
}

// displayURL 去掉协议头和末尾斜杠，用于显示
func displayURL(u string) string {
	s := strings.TrimSpace(u)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}

package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"cv-tailor-go/internal/types"
)

// 抽取阶段的目标结构示例（skills 为扁平数组）
const extractedCVShape = `{
  "name": "string",
  "title": "string",
  "contactInfo": {"email": "string", "phone": "string", "location": "string"},
  "summary": "string",
  "workExperience": [
    {"title": "string", "company": "string", "location": "string", "dates": "string", "description": ["string"]}
  ],
  "education": [
    {"institution": "string", "degree": "string", "dates": "string"}
  ],
  "skills": ["string"],
  "projects": [
    {"name": "string", "description": "string", "url": "string"}
  ],
  "certifications": [
    {"name": "string", "issuer": "string", "date": "string"}
  ]
}`

// 精选阶段的目标结构示例（skills 为 类别 -> 数组 的对象）
const curatedCVShape = `{
  "name": "string",
  "title": "string",
  "contactInfo": {"email": "string", "phone": "string", "location": "string"},
  "summary": "string",
  "workExperience": [
    {"title": "string", "company": "string", "location": "string", "dates": "string", "description": ["string"]}
  ],
  "education": [
    {"institution": "string", "degree": "string", "dates": "string"}
  ],
  "skills": {"Category Name": ["string"]},
  "projects": [
    {"name": "string", "description": "string", "url": "string"}
  ],
  "certifications": [
    {"name": "string", "issuer": "string", "date": "string"}
  ]
}`

const outputDiscipline = `Output rules:
- Respond with exactly one JSON object and nothing else. No explanations, no greetings, no Markdown.
- Escape every double quote that appears inside a string value as \".
- Use the field names exactly as shown. Do not add fields that are not in the structure.`

const extractionSystemPrompt = `You are a CV parsing engine. You receive the unstructured text of a candidate profile
(it may come from OCR, a LinkedIn export or a pasted resume) and convert it into structured data.

Target structure:
{{.shape}}

Extraction rules:
- Copy facts from the text. Never invent employers, dates, degrees, skills or contact details.
- If a piece of information is not present in the text, omit that field entirely. Do not write placeholders such as "N/A", "unknown" or empty strings.
- If a whole section (for example projects or certifications) is missing, omit the key.
- Each entry in workExperience.description is one accomplishment or responsibility, in the order it appears.
- skills is a flat list of individual skills, without categories.

` + outputDiscipline

const curationSystemPrompt = `You are an expert CV writer. You receive a candidate's CV as JSON and rewrite it
for one target job title: {{.target_job_title}}

Target structure:
{{.shape}}

Apply these rules:
1. Relevance: keep only work experience, projects, certifications and education entries that are relevant to "{{.target_job_title}}".
   If no entry of a section is relevant, omit the whole section key. Never output an empty array.
   Keep name and contactInfo as given.
2. Compression: at most 2 description bullets per job, keeping the strongest and most relevant ones.
   Each kept bullet states a quantifiable or role-relevant achievement.
   Project descriptions are 1 to 2 lines. Each certification gets one line of value statement.
3. Skills: select the skills relevant to the target role and group them into categories.
   skills must be a JSON object mapping a category name to a list of skills, most relevant category first.
   Never output a category with no skills.
4. Summary: {{if .user_summary}}rewrite the candidate's own summary below into 2 to 3 sentences aimed at the target role.
   Candidate summary: {{.user_summary}}{{else}}write a 2 to 3 sentence professional summary aimed at the target role, based only on facts in the CV.{{end}}
5. Do not invent facts. Rephrasing is allowed, fabrication is not.

` + outputDiscipline

var (
	extractionTemplate = prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(extractionSystemPrompt),
		schema.UserMessage("Profile text:\n{{.raw_text}}"),
	)

	curationTemplate = prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(curationSystemPrompt),
		schema.UserMessage("CV JSON:\n{{.cv_json}}"),
	)
)

// BuildExtractionMessages 构建抽取阶段的消息。纯函数，相同输入得到相同输出
func BuildExtractionMessages(ctx context.Context, rawText string) ([]*schema.Message, error) {
	msgs, err := extractionTemplate.Format(ctx, map[string]any{
		"shape":    extractedCVShape,
		"raw_text": rawText,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化抽取提示词失败: %w", err)
	}
	return msgs, nil
}

// BuildCurationMessages 构建精选阶段的消息
func BuildCurationMessages(ctx context.Context, cv *types.ExtractedCV, targetJobTitle, userSummary string) ([]*schema.Message, error) {
	if cv == nil {
		cv = &types.ExtractedCV{}
	}
	cvJSON, err := json.MarshalIndent(cv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化简历记录失败: %w", err)
	}

	msgs, err := curationTemplate.Format(ctx, map[string]any{
		"shape":            curatedCVShape,
		"target_job_title": strings.TrimSpace(targetJobTitle),
		"user_summary":     strings.TrimSpace(userSummary),
		"cv_json":          string(cvJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("格式化精选提示词失败: %w", err)
	}
	return msgs, nil
}

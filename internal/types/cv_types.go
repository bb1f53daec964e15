package types

import "slices"

// ContactInfo 简历联系方式。链接字段只在精选后的记录上由 OverlayLinks 填充
type ContactInfo struct {
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// IsEmpty 判断是否没有任何联系方式
func (c ContactInfo) IsEmpty() bool {
	return c == ContactInfo{}
}

// WorkExperience 一段工作经历，Description 中每一项是一条独立的要点
type WorkExperience struct {
	Title       string   `json:"title,omitempty"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	Dates       string   `json:"dates,omitempty"`
	Description []string `json:"description,omitempty"`
}

type Education struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Dates       string `json:"dates,omitempty"`
}

type Project struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Certification struct {
	Name   string `json:"name,omitempty"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

// ExtractedCV 抽取阶段产出的简历记录，技能为扁平列表
type ExtractedCV struct {
	Name           string           `json:"name,omitempty"`
	Title          string           `json:"title,omitempty"`
	ContactInfo    ContactInfo      `json:"contactInfo,omitzero"`
	Summary        string           `json:"summary,omitempty"`
	WorkExperience []WorkExperience `json:"workExperience,omitempty"`
	Education      []Education      `json:"education,omitempty"`
	Skills         []string         `json:"skills,omitempty"`
	Projects       []Project        `json:"projects,omitempty"`
	Certifications []Certification  `json:"certifications,omitempty"`
}

// CuratedCV 精选阶段产出的简历记录，技能按类别分组并保持模型给出的顺序
type CuratedCV struct {
	Name           string           `json:"name,omitempty"`
	Title          string           `json:"title,omitempty"`
	ContactInfo    ContactInfo      `json:"contactInfo,omitzero"`
	Summary        string           `json:"summary,omitempty"`
	WorkExperience []WorkExperience `json:"workExperience,omitempty"`
	Education      []Education      `json:"education,omitempty"`
	Skills         SkillGroups      `json:"skills,omitempty"`
	Projects       []Project        `json:"projects,omitempty"`
	Certifications []Certification  `json:"certifications,omitempty"`
}

// Clone 深拷贝
func (cv *ExtractedCV) Clone() *ExtractedCV {
	if cv == nil {
		return nil
	}
	out := *cv
	out.WorkExperience = cloneWork(cv.WorkExperience)
	out.Education = slices.Clone(cv.Education)
	out.Skills = slices.Clone(cv.Skills)
	out.Projects = slices.Clone(cv.Projects)
	out.Certifications = slices.Clone(cv.Certifications)
	return &out
}

// Clone 深拷贝
func (cv *CuratedCV) Clone() *CuratedCV {
	if cv == nil {
		return nil
	}
	out := *cv
	out.WorkExperience = cloneWork(cv.WorkExperience)
	out.Education = slices.Clone(cv.Education)
	out.Skills = cv.Skills.Clone()
	out.Projects = slices.Clone(cv.Projects)
	out.Certifications = slices.Clone(cv.Certifications)
	return &out
}

func cloneWork(in []WorkExperience) []WorkExperience {
	if in == nil {
		return nil
	}
	out := make([]WorkExperience, len(in))
	for i, w := range in {
		w.Description = slices.Clone(w.Description)
		out[i] = w
	}
	return out
}

// PhotoPayload 客户端上传的头像，不做解码和校验，原样嵌入文档
type PhotoPayload struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// IsEmpty 判断是否缺少图片数据
func (p PhotoPayload) IsEmpty() bool {
	return p.Data == ""
}

// ContactOverrides 用户手动填写的联系方式，非空时覆盖抽取结果
type ContactOverrides struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// LinkOverrides 用户填写的个人链接，在精选之后叠加
type LinkOverrides struct {
	LinkedInURL  string `json:"linkedinUrl,omitempty"`
	GitHubURL    string `json:"githubUrl,omitempty"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`
}

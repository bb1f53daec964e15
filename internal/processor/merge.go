package processor

import (
	"strings"

	"cv-tailor-go/internal/types"
)

// MergeContactOverrides 用用户填写的联系方式覆盖抽取结果。
// 只有非空的覆盖值生效，返回新的记录，不修改入参
func MergeContactOverrides(cv *types.ExtractedCV, overrides types.ContactOverrides) *types.ExtractedCV {
	out := cv.Clone()
	if out == nil {
		out = &types.ExtractedCV{}
	}
	override(&out.ContactInfo.Email, overrides.Email)
	override(&out.ContactInfo.Phone, overrides.Phone)
	override(&out.ContactInfo.Location, overrides.Location)
	return out
}

// OverlayLinks 把用户填写的链接写入精选后的记录，规则同 MergeContactOverrides
func OverlayLinks(cv *types.CuratedCV, links types.LinkOverrides) *types.CuratedCV {
	out := cv.Clone()
	if out == nil {
		out = &types.CuratedCV{}
	}
	override(&out.ContactInfo.LinkedIn, links.LinkedInURL)
	override(&out.ContactInfo.GitHub, links.GitHubURL)
	override(&out.ContactInfo.Portfolio, links.PortfolioURL)
	return out
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

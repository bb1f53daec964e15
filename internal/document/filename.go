package document

import (
	"fmt"
	"mime"
	"strings"
	"unicode"
)

const defaultFileName = "CV.pdf"

// FileName 根据姓名生成下载文件名，如 "Jane_Doe_CV.pdf"。
// 只保留字母、数字、连字符，姓名为空时返回 "CV.pdf"
func FileName(name string) string {
	var parts []string
	for _, field := range strings.Fields(name) {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
				return r
			}
			return -1
		}, field)
		if cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	if len(parts) == 0 {
		return defaultFileName
	}
	return strings.Join(parts, "_") + "_CV.pdf"
}

// ContentDisposition 生成附件下载头。非 ASCII 文件名按 RFC 2231 编码
func ContentDisposition(filename string) string {
	for _, r := range filename {
		if r > unicode.MaxASCII {
			return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
		}
	}
	return fmt.Sprintf(`attachment; filename="%s"`, filename)
}

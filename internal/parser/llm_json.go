package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"cv-tailor-go/internal/types"
)

const utf8BOM = "\ufeff"

// CleanLLMOutput 去掉模型输出中常见的包装：BOM、首尾空白以及 ``` 代码块标记。
// 只做这些，不尝试从夹杂说明文字的回复中“捞”出 JSON
func CleanLLMOutput(raw string) string {
	s := strings.TrimPrefix(raw, utf8BOM)
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// 去掉开头的 ``` 或 ```json 所在行；单行时只去掉标记和语言标签
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
			if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
				s = s[4:]
			}
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// DecodeLLMObject 是两个阶段共用的严格解析入口：
// 清理输出，要求恰好一个 JSON 对象且其后没有多余内容，按 schema 校验，最后解码到 out。
// 任何一步失败都返回 types.ErrSchemaViolation
func DecodeLLMObject(stage string, raw string, schema *jsonschema.Schema, out any) error {
	cleaned := CleanLLMOutput(raw)
	if cleaned == "" {
		return types.NewSchemaViolation(stage, "模型返回内容为空", nil)
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return types.NewSchemaViolation(stage, "输出不是合法的JSON", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return types.NewSchemaViolation(stage, fmt.Sprintf("期望JSON对象, 实际为 %T", doc), nil)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return types.NewSchemaViolation(stage, "JSON对象之后存在多余内容", err)
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return types.NewSchemaViolation(stage, "输出不符合约定结构", err)
		}
	}

	if err := json.NewDecoder(bytes.NewReader([]byte(cleaned))).Decode(out); err != nil {
		return types.NewSchemaViolation(stage, "解码到目标结构失败", err)
	}
	return nil
}

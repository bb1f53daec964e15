package parser

import (
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	//go:embed schemas/extracted_cv.schema.json
	extractedCVSchemaJSON string

	//go:embed schemas/curated_cv.schema.json
	curatedCVSchemaJSON string
)

// 编译后的结构约束，抽取与精选两个阶段各一份。两者唯一的结构差异在 skills：
// 抽取阶段为字符串数组，精选阶段为 类别 -> 字符串数组 的对象
var (
	ExtractedCVSchema = jsonschema.MustCompileString("extracted_cv.schema.json", extractedCVSchemaJSON)
	CuratedCVSchema   = jsonschema.MustCompileString("curated_cv.schema.json", curatedCVSchemaJSON)
)

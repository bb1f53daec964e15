package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// SkillCategory 一个技能类别及其技能
type SkillCategory struct {
	Name   string
	Skills []string
}

// SkillGroups 按插入顺序保存的 类别 -> 技能 映射。
// JSON 形式为对象，反序列化时保留对象中键出现的顺序。
type SkillGroups []SkillCategory

// Get 返回指定类别的技能
func (g SkillGroups) Get(name string) ([]string, bool) {
	for _, c := range g {
		if c.Name == name {
			return c.Skills, true
		}
	}
	return nil, false
}

// Set 设置类别的技能，已存在的类别原位替换，否则追加到末尾
func (g *SkillGroups) Set(name string, skills []string) {
	for i := range *g {
		if (*g)[i].Name == name {
			(*g)[i].Skills = skills
			return
		}
	}
	*g = append(*g, SkillCategory{Name: name, Skills: skills})
}

// Names 按顺序返回类别名
func (g SkillGroups) Names() []string {
	names := make([]string, 0, len(g))
	for _, c := range g {
		names = append(names, c.Name)
	}
	return names
}

// NonEmpty 返回去掉空类别后的副本
func (g SkillGroups) NonEmpty() SkillGroups {
	var out SkillGroups
	for _, c := range g {
		if len(c.Skills) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Clone 深拷贝
func (g SkillGroups) Clone() SkillGroups {
	if g == nil {
		return nil
	}
	out := make(SkillGroups, len(g))
	for i, c := range g {
		out[i] = SkillCategory{Name: c.Name, Skills: slices.Clone(c.Skills)}
	}
	return out
}

// MarshalJSON 按顺序输出为 JSON 对象
func (g SkillGroups) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		skills := c.Skills
		if skills == nil {
			skills = []string{}
		}
		val, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 逐个读取对象的键，保留出现顺序。重复的键以最后一次为准
func (g *SkillGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("skills: 期望 JSON 对象, 实际为 %v", tok)
	}

	out := SkillGroups{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("skills: 非法的键 %v", keyTok)
		}
		var skills []string
		if err := dec.Decode(&skills); err != nil {
			return fmt.Errorf("skills[%q]: %w", key, err)
		}
		out.Set(key, skills)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = out
	return nil
}

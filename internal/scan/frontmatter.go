package scan

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SkillMeta is the SKILL.md front-matter a skill must carry.
type SkillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var frontmatterDelim = []byte("---")

// parseSkillMeta extracts the YAML front-matter block from SKILL.md
// content and decodes the required fields. Missing delimiters, broken
// YAML, and empty name/description are all metadata errors; callers turn
// them into warnings, never failures.
func parseSkillMeta(content []byte) (SkillMeta, error) {
	var meta SkillMeta

	if !bytes.HasPrefix(content, frontmatterDelim) {
		return meta, fmt.Errorf("missing front-matter block")
	}

	rest := content[len(frontmatterDelim):]
	if bytes.HasPrefix(rest, []byte("\r\n")) {
		rest = rest[2:]
	} else if bytes.HasPrefix(rest, []byte("\n")) {
		rest = rest[1:]
	} else {
		return meta, fmt.Errorf("missing front-matter block")
	}

	end := bytes.Index(rest, append([]byte("\n"), frontmatterDelim...))
	if end < 0 {
		return meta, fmt.Errorf("unterminated front-matter block")
	}
	block := rest[:end]

	if err := yaml.Unmarshal(block, &meta); err != nil {
		return meta, fmt.Errorf("invalid front-matter YAML: %w", err)
	}
	if meta.Name == "" {
		return meta, fmt.Errorf("front-matter is missing required field %q", "name")
	}
	if meta.Description == "" {
		return meta, fmt.Errorf("front-matter is missing required field %q", "description")
	}
	return meta, nil
}

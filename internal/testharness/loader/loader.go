package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseScript parses a script from YAML bytes.
func ParseScript(data []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if sc.ID == "" {
		return nil, &LoadError{Message: "script id is required"}
	}
	if len(sc.Steps) == 0 {
		return nil, &LoadError{Message: "script must have at least one step"}
	}
	for i, st := range sc.Steps {
		if st.MMI == "" {
			return nil, &LoadError{Message: fmt.Sprintf("step %d: mmi is required", i+1)}
		}
		for field, v := range map[string]string{"delay": st.Delay, "timeout": st.Timeout} {
			if _, err := ParseDuration(v, 0); err != nil {
				return nil, &LoadError{Message: fmt.Sprintf("step %d: invalid %s", i+1, field), Cause: err}
			}
		}
	}
	for field, v := range map[string]string{"settle": sc.Settle, "timeout": sc.Timeout} {
		if _, err := ParseDuration(v, 0); err != nil {
			return nil, &LoadError{Message: "invalid " + field, Cause: err}
		}
	}

	return &sc, nil
}

// LoadScript loads a script from a file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	sc, err := ParseScript(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return sc, nil
}

// LoadDirectory loads every .yaml/.yml script below dir.
func LoadDirectory(dir string) ([]*Script, error) {
	var scripts []*Script

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		sc, err := LoadScript(path)
		if err != nil {
			return err
		}
		scripts = append(scripts, sc)
		return nil
	})
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, &LoadError{File: dir, Message: "failed to read directory", Cause: err}
	}

	return scripts, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// FilterByPattern keeps scripts whose id contains pattern. Empty keeps all.
func FilterByPattern(scripts []*Script, pattern string) []*Script {
	if pattern == "" {
		return scripts
	}
	var out []*Script
	for _, sc := range scripts {
		if strings.Contains(sc.ID, pattern) {
			out = append(out, sc)
		}
	}
	return out
}

// ParsePICS parses a PICS file. YAML (with device/items sections) and
// key=value lines are both accepted.
func ParsePICS(data []byte) (*PICSFile, error) {
	if isYAMLFormat(data) {
		return parsePICSYAML(data)
	}
	return parsePICSKeyValue(data)
}

// isYAMLFormat looks for the YAML section markers at the top level.
func isYAMLFormat(data []byte) bool {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "items:") || strings.HasPrefix(trimmed, "device:") {
			return true
		}
		if strings.Contains(trimmed, "=") && !strings.Contains(trimmed, ":") {
			return false
		}
	}
	return false
}

func parsePICSYAML(data []byte) (*PICSFile, error) {
	var pf PICSFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML PICS", Cause: err}
	}
	if pf.Items == nil {
		pf.Items = make(map[string]interface{})
	}
	return &pf, nil
}

func parsePICSKeyValue(data []byte) (*PICSFile, error) {
	pf := &PICSFile{Items: make(map[string]interface{})}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &LoadError{Line: lineNum, Message: fmt.Sprintf("invalid PICS line: %s", line)}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case value == "true" || value == "TRUE":
			pf.Items[key] = true
		case value == "false" || value == "FALSE":
			pf.Items[key] = false
		default:
			if i, err := strconv.Atoi(value); err == nil {
				pf.Items[key] = i
			} else {
				pf.Items[key] = value
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Message: "failed to read PICS data", Cause: err}
	}

	return pf, nil
}

// LoadPICS loads a PICS file from disk.
func LoadPICS(path string) (*PICSFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read PICS file", Cause: err}
	}

	pf, err := ParsePICS(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}

	if pf.Name == "" {
		pf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return pf, nil
}

// CheckPICSRequirements reports whether every requirement is present (and
// true, for boolean items).
func CheckPICSRequirements(pf *PICSFile, requirements []string) bool {
	for _, req := range requirements {
		value, exists := pf.Items[req]
		if !exists {
			return false
		}
		if b, ok := value.(bool); ok && !b {
			return false
		}
	}
	return true
}

// FilterByPICS returns the scripts whose requirements pf satisfies.
func FilterByPICS(scripts []*Script, pf *PICSFile) []*Script {
	var out []*Script
	for _, sc := range scripts {
		if CheckPICSRequirements(pf, sc.PICSRequirements) {
			out = append(out, sc)
		}
	}
	return out
}

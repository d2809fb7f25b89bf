package shader

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// computeAttrRegex finds the @compute attribute of an entry point
	computeAttrRegex = regexp.MustCompile(`@compute\b`)

	// workgroupSizeRegex captures 1-3 integer dimensions from @workgroup_size(x[, y[, z]])
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)

	// fnRegex matches the fn keyword that ends an attribute list
	fnRegex = regexp.MustCompile(`\bfn\s+\w+`)
)

// WorkgroupSize extracts the @workgroup_size(x[, y[, z]]) of the first @compute entry point.
// Omitted dimensions default to 1, and source without a sized compute entry yields [1, 1, 1].
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
func WorkgroupSize(source string) [3]uint32 {
	size, _ := ParseWorkgroupSize(source)
	return size
}

// ParseWorkgroupSize is WorkgroupSize that also reports whether a size was declared.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
//   - bool: true if the first @compute entry declares @workgroup_size
func ParseWorkgroupSize(source string) ([3]uint32, bool) {
	result := [3]uint32{1, 1, 1}
	cleaned := stripComments(source)

	loc := computeAttrRegex.FindStringIndex(cleaned)
	if loc == nil {
		return result, false
	}

	// the attribute may precede or follow @compute, but always precedes fn
	start := strings.LastIndex(cleaned[:loc[0]], ";")
	start = max(start, strings.LastIndex(cleaned[:loc[0]], "}"))
	attrs := cleaned[start+1:]
	if fn := fnRegex.FindStringIndex(attrs); fn != nil {
		attrs = attrs[:fn[0]]
	}

	match := workgroupSizeRegex.FindStringSubmatch(attrs)
	if match == nil {
		return result, false
	}
	for i := 0; i < 3; i++ {
		if match[i+1] == "" {
			continue
		}
		if v, err := strconv.ParseUint(match[i+1], 10, 32); err == nil && v > 0 {
			result[i] = uint32(v)
		}
	}
	return result, true
}

// stripComments removes line and block comments so they do not interfere with attribute parsing.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes /* ... */ comments, which nest in WGSL.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

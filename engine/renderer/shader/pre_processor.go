// pre_processor.go implements the Oxy WGSL shader pre-processor. It substitutes
// {{NAME}} define tokens, then scans the source for @oxy: annotations and replaces
// them with injected struct source or generated binding declarations.
package shader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-life/engine/geometry"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
)

// defineTokenRegex matches {{NAME}} placeholders left after define substitution.
var defineTokenRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// registryEntry pairs a WGSL struct source string with the WGSL type name emitted in
// generated @group/@binding declarations. Scalar entries have an empty Source.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	defines              map[string]string

	// declarations is reset at the start of each Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations and
// {{NAME}} define tokens.
type PreProcessor interface {
	// Process substitutes defines and replaces annotations with their WGSL output.
	// @oxy:include annotations are replaced with embedded struct source text, and
	// @oxy:group annotations with generated @group/@binding variable declarations.
	// Each struct is included at most once per source even if requested repeatedly.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if an annotation is malformed or a define token has no value
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent call to
	// Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types and
// address space mappings pre-populated.
//
// Parameters:
//   - defines: values substituted for {{NAME}} tokens, may be nil
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(defines map[string]string) PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgGrid:       {Source: grid.GPUGridUniformSource, Type: "GridUniform"},
			AnnotationArgCell:       {Type: "u32"},
			AnnotationArgCellVertex: {Source: geometry.GPUVertexSource, Type: "VertexInput"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		defines: defines,
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	source, err := p.substituteDefines(source)
	if err != nil {
		return "", err
	}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			if entry := p.structRegistry[a.Args[0]]; entry.Source != "" {
				out = append(out, strings.TrimRight(entry.Source, "\n"))
			}
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			wgslType := p.structRegistry[a.Args[2]].Type
			if elem, isArray := unwrapArrayType(string(a.Args[2])); isArray {
				wgslType = fmt.Sprintf("array<%s>", p.structRegistry[AnnotationArg(elem)].Type)
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) substituteDefines(source string) (string, error) {
	var missing []string
	result := defineTokenRegex.ReplaceAllStringFunc(source, func(token string) string {
		name := defineTokenRegex.FindStringSubmatch(token)[1]
		value, ok := p.defines[name]
		if !ok {
			missing = append(missing, name)
			return token
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("undefined shader define(s): %s", strings.Join(missing, ", "))
	}
	return result, nil
}

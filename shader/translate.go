package shader

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
)

// Language identifies the shading language of a Source.
type Language uint8

const (
	// GLSL sources are passed to the driver after include resolution.
	GLSL Language = iota
	// WGSL sources are translated to GLSL with naga.
	WGSL
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	default:
		return "Language(" + strconv.Itoa(int(l)) + ")"
	}
}

// Source is shader code in either language.
type Source struct {
	Language Language
	Code     string
	// EntryPoint selects the WGSL entry point. If empty, the first entry
	// point of the requested stage is used. Ignored for GLSL.
	EntryPoint string
}

// DefaultCacheSize is the soft limit of the translation cache.
const DefaultCacheSize = 256

// Translator produces driver-ready GLSL from shader sources.
// Translations are cached by a digest of the target version, stage,
// entry point and source.
//
// Translator is safe for concurrent use.
type Translator struct {
	version glsl.Version
	cache   *lru[uint64, translation]
	logger  func() *slog.Logger
}

type translation struct {
	source string
	glsl   string
}

// NewTranslator creates a translator targeting version. A cacheSize of 0
// selects DefaultCacheSize; a negative size disables eviction.
func NewTranslator(version glsl.Version, cacheSize int, logger func() *slog.Logger) *Translator {
	switch {
	case cacheSize == 0:
		cacheSize = DefaultCacheSize
	case cacheSize < 0:
		cacheSize = 0
	}
	if logger == nil {
		logger = slog.Default
	}
	return &Translator{
		version: version,
		cache:   newLRU[uint64, translation](cacheSize),
		logger:  logger,
	}
}

// Version returns the target GLSL version.
func (t *Translator) Version() glsl.Version { return t.version }

// Stats returns translation cache statistics.
func (t *Translator) Stats() CacheStats { return t.cache.stats() }

// Purge drops all cached translations.
func (t *Translator) Purge() { t.cache.clear() }

// Translate resolves includes in src and, for WGSL, compiles the entry
// point of the given stage to GLSL.
func (t *Translator) Translate(src Source, stage gputypes.ShaderStage, includes map[string]string) (string, error) {
	code, err := ResolveIncludes(src.Code, includes)
	if err != nil {
		return "", err
	}
	switch src.Language {
	case GLSL:
		return code, nil
	case WGSL:
	default:
		return "", fmt.Errorf("%w: unknown language %v", ErrTranslate, src.Language)
	}

	irStage, err := t.irStage(stage)
	if err != nil {
		return "", err
	}

	key := t.digest(code, stage, src.EntryPoint)
	if tr, ok := t.cache.get(key); ok && tr.source == code {
		return tr.glsl, nil
	}

	out, err := t.compile(code, irStage, src.EntryPoint)
	if err != nil {
		return "", err
	}
	t.cache.set(key, translation{source: code, glsl: out})
	t.logger().Debug("shader: WGSL translated",
		"stage", stage.String(),
		"entryPoint", src.EntryPoint,
		"version", t.version.String(),
		"glslLen", len(out),
	)
	return out, nil
}

func (t *Translator) irStage(stage gputypes.ShaderStage) (ir.ShaderStage, error) {
	switch stage {
	case gputypes.ShaderStageVertex:
		return ir.StageVertex, nil
	case gputypes.ShaderStageFragment:
		return ir.StageFragment, nil
	case gputypes.ShaderStageCompute:
		if !t.version.SupportsCompute() {
			return 0, fmt.Errorf("%w: compute requires GLSL 430 or 310 es, have %s", ErrStage, t.version)
		}
		return ir.StageCompute, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrStage, stage)
	}
}

func (t *Translator) digest(code string, stage gputypes.ShaderStage, entry string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(t.version.String())
	_, _ = d.Write([]byte{0, byte(stage), 0})
	_, _ = d.WriteString(entry)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(code)
	return d.Sum64()
}

func (t *Translator) compile(code string, stage ir.ShaderStage, entry string) (string, error) {
	ast, err := naga.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: parse: %w", ErrTranslate, err)
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return "", fmt.Errorf("%w: lower: %w", ErrTranslate, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return "", fmt.Errorf("%w: validate: %w", ErrTranslate, err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i := range verrs {
			errs[i] = verrs[i]
		}
		return "", fmt.Errorf("%w: validate: %w", ErrTranslate, errors.Join(errs...))
	}

	name, err := entryPoint(module, stage, entry)
	if err != nil {
		return "", err
	}

	out, _, err := glsl.Compile(module, glsl.Options{
		LangVersion:        t.version,
		EntryPoint:         name,
		ForceHighPrecision: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: entry point %q: %w", ErrTranslate, name, err)
	}
	return out, nil
}

// entryPoint finds the named entry point, or the first one of stage.
func entryPoint(module *ir.Module, stage ir.ShaderStage, name string) (string, error) {
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if ep.Stage != stage {
			continue
		}
		if name == "" || ep.Name == name {
			return ep.Name, nil
		}
	}
	if name == "" {
		return "", fmt.Errorf("%w: no entry point for stage %d", ErrTranslate, stage)
	}
	return "", fmt.Errorf("%w: entry point %q not found for stage %d", ErrTranslate, name, stage)
}

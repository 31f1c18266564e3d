package contract

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schemas/config.cue
var configSchemaSource []byte

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func loadConfigSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileBytes(configSchemaSource, cue.Filename("config.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("failed to compile config schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Config"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("config schema has no #Config definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// ValidateSettings checks a raw settings document, as returned by viper.AllSettings,
// against the embedded CUE schema. Only the structured sections are constrained.
func ValidateSettings(settings map[string]any) error {
	ctx, def, err := loadConfigSchema()
	if err != nil {
		return err
	}

	data := ctx.Encode(settings)
	if err := data.Err(); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

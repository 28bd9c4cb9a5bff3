package mysql

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// normalizeViewDefinition reprints a view definition through the MySQL
// parser so that introspected definitions compare stably across server
// versions, which render them with different qualification and quoting.
// Definitions the parser cannot handle pass through unchanged.
func normalizeViewDefinition(def string) string {
	if def == "" {
		return def
	}
	stmts, _, err := parser.New().Parse(def, "", "")
	if err != nil || len(stmts) == 0 {
		return def
	}

	var sb strings.Builder
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := stmts[0].Restore(ctx); err != nil {
		return def
	}
	return sb.String()
}

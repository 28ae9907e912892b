package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, userErrorf("invalid id %q", s)
	}
	return id, nil
}

// table looks up an entity table, listing the valid names on a miss.
func table(s *canvass.Store, name string) (types.Table, error) {
	t, err := s.Table(name)
	if err != nil {
		return nil, userErrorf("unknown table %q (valid: %s): %w",
			name, strings.Join(types.EntityTableNames, ", "), err)
	}
	return t, nil
}

// touchesDirectory reports whether writes to the table can change the phone
// directory.
func touchesDirectory(name string) bool {
	return name == types.CustomersTable
}

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

// runJQ applies query to the JSON form of v and writes every result.
// Strings are printed raw so the filter composes with shell pipelines.
func runJQ(w io.Writer, query string, v any) error {
	q, err := gojq.Parse(query)
	if err != nil {
		return ErrUsageHint(fmt.Sprintf("invalid --jq filter: %v", err), "See https://jqlang.github.io/jq/manual/")
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return ErrUsage(fmt.Sprintf("invalid --jq filter: %v", err))
	}

	// gojq only understands plain JSON values.
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var input any
	if err := json.Unmarshal(b, &input); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	iter := code.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := result.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return nil
			}
			return ErrUsage(fmt.Sprintf("--jq: %v", err))
		}
		if s, isStr := result.(string); isStr {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
}

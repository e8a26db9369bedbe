package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// readPayload parses the --data value or the --from-file contents as a YAML
// or JSON object. A file name of "-" reads standard input.
func readPayload(data, file string, stdin io.Reader) (sbapi.Payload, error) {
	var raw []byte

	switch {
	case data != "":
		raw = []byte(data)
	case file == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}

		raw = content
	case file != "":
		// file is supplied by the user on the command line
		// #nosec G304
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading payload file: %w", err)
		}

		raw = content
	default:
		return nil, constants.ErrPayloadRequired
	}

	if strings.TrimSpace(string(raw)) == "" {
		return nil, constants.ErrPayloadRequired
	}

	var decoded any

	err := yaml.Unmarshal(raw, &decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return nil, constants.ErrPayloadNotAnObject
	}

	return sbapi.Payload(object), nil
}

package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const maxFrameSize = 1 << 20

// StreamError is an error event sent in the middle of a reply
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

type event struct {
	name string
	data string
}

// readEvents parses a text/event-stream body and calls fn for every event.
// It stops at the first error fn returns.
func readEvents(r io.Reader, fn func(event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	var name string
	var data []string
	dispatch := func() error {
		if len(data) == 0 {
			name = ""
			return nil
		}
		ev := event{name: name, data: strings.Join(data, "\n")}
		name, data = "", nil
		return fn(ev)
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				name = value
			case "data":
				data = append(data, value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return dispatch()
}

// chunkText decodes a data frame. Frames are JSON strings; anything else is
// passed through as is.
func chunkText(data string) string {
	var text string
	if err := json.Unmarshal([]byte(data), &text); err == nil {
		return text
	}
	return data
}

func streamError(data string) *StreamError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err == nil && payload.Error != "" {
		return &StreamError{Message: payload.Error}
	}
	if data == "" {
		data = "stream error"
	}
	return &StreamError{Message: data}
}

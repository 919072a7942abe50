package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Stream lê os eventos SSE do gateway. Deltas de texto saem na hora;
// deltas de tool call são acumulados por índice e saem montados no fim.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	calls   map[int]*ToolCall
	pending []StreamEvent
	done    bool
}

func NewStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{
		body:    body,
		scanner: scanner,
		calls:   make(map[int]*ToolCall),
	}
}

// Next devolve o próximo evento ou io.EOF quando o stream termina.
func (s *Stream) Next() (StreamEvent, error) {
	for {
		if len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			return ev, nil
		}
		if s.done {
			return StreamEvent{}, io.EOF
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return StreamEvent{}, fmt.Errorf("erro no stream: %w", err)
			}
			s.finish()
			continue
		}

		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			s.finish()
			continue
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return StreamEvent{}, fmt.Errorf("erro do gateway: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			continue
		}

		d := chunk.Choices[0].Delta
		for _, tc := range d.ToolCalls {
			s.accumulate(tc)
		}
		if d.Content != "" {
			return StreamEvent{Type: EventContent, Content: d.Content}, nil
		}
	}
}

func (s *Stream) Close() error {
	return s.body.Close()
}

func (s *Stream) accumulate(tc toolCallDelta) {
	call, ok := s.calls[tc.Index]
	if !ok {
		call = &ToolCall{Type: "function"}
		s.calls[tc.Index] = call
	}
	if tc.ID != "" {
		call.ID = tc.ID
	}
	if tc.Function.Name != "" {
		call.Function.Name = tc.Function.Name
	}
	call.Function.Arguments += tc.Function.Arguments
}

func (s *Stream) finish() {
	if s.done {
		return
	}
	s.done = true

	indexes := make([]int, 0, len(s.calls))
	for i := range s.calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		call := s.calls[i]
		if call.Function.Name == "" {
			continue
		}
		s.pending = append(s.pending, StreamEvent{Type: EventToolCall, ToolCall: call})
	}
}

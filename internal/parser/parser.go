package parser

import "strconv"

// Parse 将 cron 表达式解析为有序的字段序列
//
// 语法:
//
//	expression := field (ws+ field)*
//	field      := '*' | term (',' term)*
//	term       := number | number '-' number
//
// 字段之间必须有空白，输入必须被完整消费。任何失败都返回 KindParse 错误，
// 不包含位置信息。
func Parse(text string) ([]Field, error) {
	s := &scanner{src: text}

	var fields []Field
	s.skipSpace()
	for !s.eof() {
		f, ok := s.field()
		if !ok {
			return nil, parseError(text)
		}
		fields = append(fields, f)

		if s.eof() {
			break
		}
		// 字段后面只能是空白
		if !s.skipSpace() {
			return nil, parseError(text)
		}
	}

	if len(fields) == 0 {
		return nil, parseError(text)
	}
	return fields, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

// skipSpace 跳过空白，返回是否跳过了至少一个字符
func (s *scanner) skipSpace() bool {
	start := s.pos
	for !s.eof() && isSpace(s.src[s.pos]) {
		s.pos++
	}
	return s.pos > start
}

func (s *scanner) field() (Field, bool) {
	if s.peek() == '*' {
		s.pos++
		return AllField(), true
	}

	first, ok := s.term()
	if !ok {
		return Field{}, false
	}
	if s.peek() != ',' {
		return first, true
	}

	terms := []Field{first}
	for s.peek() == ',' {
		s.pos++
		t, ok := s.term()
		if !ok {
			return Field{}, false
		}
		terms = append(terms, t)
	}
	return ListField(terms...), true
}

func (s *scanner) term() (Field, bool) {
	start, ok := s.number()
	if !ok {
		return Field{}, false
	}
	if s.peek() != '-' {
		return NumberField(start), true
	}
	s.pos++
	end, ok := s.number()
	if !ok {
		return Field{}, false
	}
	return RangeField(start, end), true
}

func (s *scanner) number() (uint32, bool) {
	start := s.pos
	for !s.eof() && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	n, err := strconv.ParseUint(s.src[start:s.pos], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

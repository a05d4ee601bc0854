package naverland

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString accepts a JSON string or number. The provider is not consistent about ids and counts.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("can't decode string: %w", err)
		}
		*s = FlexString(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("can't decode %s as string or number: %w", b, err)
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexInt accepts a JSON number or numeric string. Anything unparsable decodes to zero.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		*i = 0
		return nil
	}

	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*i = 0
		return nil
	}
	*i = FlexInt(v)
	return nil
}

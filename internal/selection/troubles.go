package selection

import (
	"errors"
	"fmt"

	"github.com/hbomb79/Cull/internal/xmp"
)

type (
	TroubleType int
	Trouble     struct {
		error
		tType TroubleType
	}

	ResolutionType  int
	RetryResolution struct{}
	AbortResolution struct{}
)

const (
	SCAN_FAILURE TroubleType = iota
	PARSE_FAILURE
	ACTION_FAILURE
	GENERIC_FAILURE

	RETRY ResolutionType = iota
	ABORT
)

var allowedResolutionTypes = map[TroubleType][]ResolutionType{
	SCAN_FAILURE:    {ABORT, RETRY},
	PARSE_FAILURE:   {ABORT, RETRY},
	ACTION_FAILURE:  {ABORT, RETRY},
	GENERIC_FAILURE: {ABORT, RETRY},
}

func newTrouble(err error) Trouble {
	var parseErr *xmp.RatingParseError
	if errors.As(err, &parseErr) {
		return Trouble{error: err, tType: PARSE_FAILURE}
	}

	return Trouble{error: err, tType: GENERIC_FAILURE}
}

func (t *Trouble) Type() TroubleType { return t.tType }

func (t *Trouble) AllowedResolutionTypes() []ResolutionType {
	if allowed, ok := allowedResolutionTypes[t.tType]; ok {
		return allowed
	}

	return []ResolutionType{}
}

func (t *Trouble) isResolutionTypeAllowed(resType ResolutionType) bool {
	for _, v := range t.AllowedResolutionTypes() {
		if v == resType {
			return true
		}
	}

	return false
}

func (t *Trouble) GenerateResolution(resolutionMethod ResolutionType) (any, error) {
	if !t.isResolutionTypeAllowed(resolutionMethod) {
		return nil, ErrResolutionIncompatible
	}

	switch resolutionMethod {
	case ABORT:
		return &AbortResolution{}, nil
	case RETRY:
		return &RetryResolution{}, nil
	default:
		return nil, ErrResolutionIncompatible
	}
}

func (t TroubleType) String() string {
	switch t {
	case SCAN_FAILURE:
		return fmt.Sprintf("SCAN_FAILURE[%d]", t)
	case PARSE_FAILURE:
		return fmt.Sprintf("PARSE_FAILURE[%d]", t)
	case ACTION_FAILURE:
		return fmt.Sprintf("ACTION_FAILURE[%d]", t)
	default:
		return fmt.Sprintf("GENERIC_FAILURE[%d]", t)
	}
}

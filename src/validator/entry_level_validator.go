package validator

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type EntryLevelValidator struct {
}

// Validate parses both manual inputs, they must be finite positive numbers.
func (v *EntryLevelValidator) Validate(request model.EntryLevelRequest) (float64, float64, error) {
	btcInput, err := v.parseInput("btcInput", request.BtcInput)
	if err != nil {
		return 0, 0, err
	}

	ethInput, err := v.parseInput("ethInput", request.EthInput)
	if err != nil {
		return 0, 0, err
	}

	return btcInput, ethInput, nil
}

func (v *EntryLevelValidator) parseInput(field string, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", model.ErrInvalidInput, field)
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || !model.IsFinite(value) {
		return 0, fmt.Errorf("%w: %s must be a number, %q given", model.ErrInvalidInput, field, raw)
	}

	if value <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, %q given", model.ErrInvalidInput, field, raw)
	}

	return value, nil
}

package model

import "fmt"

type NormalizationParameters struct {
	AvgRatio24h  float64 `json:"avgRatio24h"`
	AvgRatio180d float64 `json:"avgRatio180d"`
	BtcMin       float64 `json:"btcMin"`
	BtcMax       float64 `json:"btcMax"`
	EthMin       float64 `json:"ethMin"`
	EthMax       float64 `json:"ethMax"`
}

func (n NormalizationParameters) Validate() error {
	if !IsFinite(n.AvgRatio180d) || n.AvgRatio180d == 0 {
		return fmt.Errorf("%w: avg_ratio_180d = %v", ErrDegenerateRatio, n.AvgRatio180d)
	}
	if !IsFinite(n.BtcMin) || !IsFinite(n.BtcMax) || n.BtcMin == n.BtcMax {
		return fmt.Errorf("%w: btc bounds [%v, %v]", ErrDegenerateBounds, n.BtcMin, n.BtcMax)
	}
	if !IsFinite(n.EthMin) || !IsFinite(n.EthMax) || n.EthMin == n.EthMax {
		return fmt.Errorf("%w: eth bounds [%v, %v]", ErrDegenerateBounds, n.EthMin, n.EthMax)
	}

	return nil
}

func (n NormalizationParameters) ToScalars() map[string]float64 {
	return map[string]float64{
		ScalarAvgRatio24h:  n.AvgRatio24h,
		ScalarAvgRatio180d: n.AvgRatio180d,
		ScalarBtcAsEthMin:  n.BtcMin,
		ScalarBtcAsEthMax:  n.BtcMax,
		ScalarEthMin:       n.EthMin,
		ScalarEthMax:       n.EthMax,
	}
}

// NormalizationFromDataset reads the summary scalars a pre-derived payload carries.
func NormalizationFromDataset(dataset MarketDataset) (NormalizationParameters, bool) {
	params := NormalizationParameters{}
	required := map[string]*float64{
		ScalarAvgRatio180d: &params.AvgRatio180d,
		ScalarBtcAsEthMin:  &params.BtcMin,
		ScalarBtcAsEthMax:  &params.BtcMax,
		ScalarEthMin:       &params.EthMin,
		ScalarEthMax:       &params.EthMax,
	}

	for name, target := range required {
		value, ok := dataset.Scalar(name)
		if !ok {
			return params, false
		}
		*target = value
	}

	if value, ok := dataset.Scalar(ScalarAvgRatio24h); ok {
		params.AvgRatio24h = value
	}

	return params, true
}

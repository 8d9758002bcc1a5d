package hydra

import (
	"encoding/json"
	"fmt"
	"sort"
)

const plutusV2CostModelKey = "PlutusV2"

// ProtocolParameters holds the subset of the head protocol parameters
// needed to build script transactions.
type ProtocolParameters struct {
	CostModels map[string]json.RawMessage `json:"costModels"`
}

// PlutusV2CostModel returns the PlutusV2 cost model in ledger order. Both the
// array form and the older named-parameter object form are accepted; named
// parameters are ordered by name, which is the ledger order for PlutusV2.
func (p ProtocolParameters) PlutusV2CostModel() ([]int64, error) {
	raw, ok := p.CostModels[plutusV2CostModelKey]
	if !ok {
		return nil, ErrNoCostModel
	}

	var list []int64
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var named map[string]int64
	if err := json.Unmarshal(raw, &named); err != nil {
		return nil, fmt.Errorf("%w: cost model: %s", ErrDecode, err)
	}
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list = make([]int64, 0, len(keys))
	for _, k := range keys {
		list = append(list, named[k])
	}
	return list, nil
}

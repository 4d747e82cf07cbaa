package sched

// networkHandlers is the extended-network keyword registry.
func networkHandlers() map[string]KeywordHandler {
	return map[string]KeywordHandler{
		"BRANPROP": handleBRANPROP,
		"NODEPROP": handleNODEPROP,
		"NETBALAN": handleNETBALAN,
	}
}

func handleBRANPROP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	net := st.Network()
	changed := false
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		downtree := record.Item("DOWNTREE_NODE").GetTrimmedString(0)
		uptree := record.Item("UPTREE_NODE").GetTrimmedString(0)
		if downtree == "" || uptree == "" {
			return NewInputError(hc.Location(), "BRANPROP requires both branch end nodes")
		}

		vfp := record.Item("VFP_TABLE").GetInt(0)
		// table 9999 means fixed pressure drop, resolved downstream
		if vfp < 0 {
			if net.DropBranch(uptree, downtree) {
				changed = true
			}
			continue
		}
		if vfp > 0 && vfp != 9999 && !st.VFPProd().Has(vfp) {
			return NewInputError(hc.Location(), "VFP table: %d not defined", vfp)
		}

		if net.AddBranch(NetworkBranch{
			Downtree: downtree,
			Uptree:   uptree,
			VFPTable: vfp,
			ALQ:      record.Item("ALQ").GetDouble(0),
		}) {
			changed = true
		}
	}
	if changed {
		st.Events.AddEvent(EventGroupChange)
	}
	return nil
}

func handleNODEPROP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	net := st.Network()
	changed := false
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		name := record.Item("NAME").GetTrimmedString(0)
		if name == "" {
			return NewInputError(hc.Location(), "NODEPROP requires a node name")
		}

		prev, existed := net.Node(name)
		node := prev
		node.Name = name
		if it := record.Item("PRESSURE"); it.HasValue(0) {
			node.TerminalPressure = it.GetSIDouble(0, hc.units)
			node.HasTerminal = true
		}
		node.AsChoke = ToBool(record.Item("AS_CHOKE").GetTrimmedString(0))
		node.AddGasLiftGas = ToBool(record.Item("ADD_GAS_LIFT_GAS").GetTrimmedString(0))
		if it := record.Item("CHOKE_GROUP"); it.HasValue(0) {
			node.ChokeTargetGroup = it.GetTrimmedString(0)
		} else if node.AsChoke {
			// a choke with no explicit group throttles the group of the
			// same name
			node.ChokeTargetGroup = name
		}
		if node.AsChoke && !st.Groups().Has(node.ChokeTargetGroup) {
			return NewInputError(hc.Location(), "NODEPROP choke group %s is not defined", node.ChokeTargetGroup)
		}

		if !existed || node != prev {
			net.UpdateNode(node)
			changed = true
		}
	}
	if changed {
		st.Events.AddEvent(EventGroupChange)
	}
	return nil
}

func handleNETBALAN(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	st.SetNetBalance(NetworkBalanceFromRecord(&hc.keyword.Records[0], hc.units))
	return nil
}

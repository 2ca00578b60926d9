package model

// StatusTable resolves status codes to their long descriptions. Build it
// once at startup with NewStatusTable and share the pointer; it is never
// written after construction, so concurrent readers need no locking.
type StatusTable struct {
	descriptions map[StatusCode]string
}

func NewStatusTable() *StatusTable {
	return &StatusTable{
		descriptions: map[StatusCode]string{
			Good:                                    "The operation was successful and the associated results may be used.",
			GoodLocalOverride:                       "The value has been overridden.",
			Uncertain:                               "The operation was partially successful and that associated results might not be suitable for some purposes.",
			UncertainNoCommunicationLastUsableValue: "Communication to the data source has failed. The variable value is the last value that had a good quality.",
			UncertainLastUsableValue:                "Whatever was updating this value has stopped doing so.",
			UncertainSubstituteValue:                "The value is an operational value that was manually overwritten.",
			UncertainInitialValue:                   "The value is an initial value for a variable that normally receives its value from another variable.",
			UncertainSensorNotAccurate:              "The value is at one of the sensor limits.",
			UncertainEngineeringUnitsExceeded:       "The value is outside of the range of values defined for this parameter.",
			UncertainSubNormal:                      "The value is derived from multiple sources and has less than the required number of Good sources.",
			Bad:                                     "The operation failed and any associated results cannot be used.",
			BadConfigurationError:                   "There is a problem with the configuration that affects the usefulness of the value.",
			BadNotConnected:                         "The variable should receive its value from another variable, but has never been configured to do so.",
			BadDeviceFailure:                        "There has been a failure in the device/data source that generates the value that has affected the value.",
			BadSensorFailure:                        "There has been a failure in the sensor from which the value is derived by the device/data source.",
			BadOutOfService:                         "The source of the data is not operational.",
			BadDeadbandFilterInvalid:                "The deadband filter is not valid.",
		},
	}
}

// LongDescription returns "" for codes the table does not describe.
func (t *StatusTable) LongDescription(code StatusCode) string {
	if t == nil {
		return ""
	}
	return t.descriptions[code]
}

// Describe returns the name and the long description in one call.
func (t *StatusTable) Describe(code StatusCode) (name, description string) {
	return code.String(), t.LongDescription(code)
}

func (t *StatusTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.descriptions)
}

package record

// Field is a sealed tagged variant for the typed entries a caller supplies
// when building a record. One implementation exists per recognized field
// kind; anything else falls through the construction loop untouched. That
// explicit ignore-unknown branch is the forward-compatibility contract:
// field lists written by newer SDK versions never fail to materialize.
type Field interface {
	trackingField() // Sealed within this module
}

// ProjectTokenField carries the project token the record belongs to.
type ProjectTokenField struct {
	Token string
}

func (ProjectTokenField) trackingField() {}

// CustomerIDField carries the customer-id key/value pair.
type CustomerIDField struct {
	Key   string
	Value Value
}

func (CustomerIDField) trackingField() {}

// EventTypeField names the behavioral event. Recognized only when building
// an Event; customer updates skip it.
type EventTypeField struct {
	Name string
}

func (EventTypeField) trackingField() {}

// TimestampField overrides the record timestamp (unix epoch seconds).
// Absent this field, records are stamped with the current time.
type TimestampField struct {
	Seconds float64
}

func (TimestampField) trackingField() {}

// PropertiesField attaches a property list to the record. Multiple
// occurrences accumulate; duplicate keys are all kept - deduplication
// happens at the record level only, never per property.
type PropertiesField struct {
	Properties []Property
}

func (PropertiesField) trackingField() {}

// NewEvent materializes an Event from tagged field entries.
// The timestamp defaults to now when no TimestampField is supplied.
func NewEvent(fields ...Field) *Event {
	e := &Event{Timestamp: nowUnix()}
	for _, f := range fields {
		switch f := f.(type) {
		case ProjectTokenField:
			e.ProjectToken = f.Token
		case CustomerIDField:
			e.CustomerIDKey = f.Key
			e.CustomerIDValue = f.Value
		case EventTypeField:
			e.EventType = f.Name
		case TimestampField:
			e.Timestamp = f.Seconds
		case PropertiesField:
			e.Properties = append(e.Properties, f.Properties...)
		default:
			// Unrecognized field kind - skip, don't reject.
		}
	}
	return e
}

// NewCustomerUpdate materializes a CustomerUpdate from tagged field entries.
// EventTypeField is not a recognized tag on this path and is skipped.
func NewCustomerUpdate(fields ...Field) *CustomerUpdate {
	c := &CustomerUpdate{Timestamp: nowUnix()}
	for _, f := range fields {
		switch f := f.(type) {
		case ProjectTokenField:
			c.ProjectToken = f.Token
		case CustomerIDField:
			c.CustomerIDKey = f.Key
			c.CustomerIDValue = f.Value
		case TimestampField:
			c.Timestamp = f.Seconds
		case PropertiesField:
			c.Properties = append(c.Properties, f.Properties...)
		default:
			// Unrecognized field kind - skip, don't reject.
		}
	}
	return c
}

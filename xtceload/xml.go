// Package xtceload builds a mdb.MissionDatabase from one or more XTCE XML
// documents. Loading happens in two passes: a name-registration pass that
// creates every space system so qualified-name references resolve
// regardless of document order, followed by a fixpoint construction pass
// that builds parameter types, parameters, containers, and match criteria,
// retrying any entity whose reference target is not yet built until a full
// round makes no further progress.
package xtceload

import "encoding/xml"

// xmlUnit is one entry of a data type's UnitSet.
type xmlUnit struct {
	Description string `xml:"description,attr"`
	Power       string `xml:"power,attr"`
	Factor      string `xml:"factor,attr"`
	Text        string `xml:",chardata"`
}

type xmlUnitSet struct {
	Units []xmlUnit `xml:"Unit"`
}

type xmlIntegerDataEncoding struct {
	SizeInBits string `xml:"sizeInBits,attr"`
	Encoding   string `xml:"encoding,attr"`
	ByteOrder  string `xml:"byteOrder,attr"`
}

type xmlFloatDataEncoding struct {
	SizeInBits string `xml:"sizeInBits,attr"`
	Encoding   string `xml:"encoding,attr"`
}

type xmlFixedValue struct {
	Value string `xml:",chardata"`
}

type xmlSizeInBits struct {
	Fixed *xmlFixedValue `xml:"Fixed>FixedValue"`
}

type xmlStringDataEncoding struct {
	Encoding            string         `xml:"encoding,attr"`
	SizeInBits          *xmlSizeInBits `xml:"SizeInBits"`
	SizeInBitsOfSizeTag string         `xml:"sizeInBitsOfSizeTag,attr"`
	TerminationChar     string         `xml:"TerminationChar"`
}

type xmlBinaryDataEncoding struct {
	SizeInBits          *xmlSizeInBits `xml:"SizeInBits"`
	SizeInBitsOfSizeTag string         `xml:"sizeInBitsOfSizeTag,attr"`
}

type xmlValidRange struct {
	MinInclusive string `xml:"minInclusive,attr"`
	MaxInclusive string `xml:"maxInclusive,attr"`
}

type xmlEnumeration struct {
	Value            string `xml:"value,attr"`
	MaxValue         string `xml:"maxValue,attr"`
	Label            string `xml:"label,attr"`
	ShortDescription string `xml:"shortDescription,attr"`
}

type xmlEnumerationList struct {
	Enumerations []xmlEnumeration `xml:"Enumeration"`
}

type xmlMember struct {
	Name             string `xml:"name,attr"`
	TypeRef          string `xml:"typeRef,attr"`
	ShortDescription string `xml:"shortDescription,attr"`
}

type xmlMemberList struct {
	Members []xmlMember `xml:"Member"`
}

type xmlDimension struct {
	FixedValue   *xmlFixedValue `xml:"StartingIndex>FixedValue"`
	EndingFixed  *xmlFixedValue `xml:"EndingIndex>FixedValue"`
	DynamicParam string         `xml:"EndingIndex>DynamicValue>ParameterInstanceRef>parameterRef,attr"`
}

type xmlDimensionList struct {
	Dimensions []xmlDimension `xml:"Dimension"`
}

type xmlCalibrator struct {
	Present bool
	Kind    string
}

// UnmarshalXML lets xmlCalibrator record that a calibrator is present and
// the element name of its first child (e.g. "PolynomialCalibrator"),
// without modeling the calibrator body itself.
func (c *xmlCalibrator) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.Present = true
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if c.Kind == "" {
				c.Kind = t.Name.Local
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

type xmlBaseType struct {
	Name             string         `xml:"name,attr"`
	ShortDescription string         `xml:"shortDescription,attr"`
	UnitSet          xmlUnitSet     `xml:"UnitSet"`
	ValidRange       xmlValidRange  `xml:"ValidRange"`
	DefaultCalibrator *xmlCalibrator `xml:"DefaultCalibrator"`
}

type xmlIntegerParameterType struct {
	xmlBaseType
	Signed              string                 `xml:"signed,attr"`
	SizeInBits          string                 `xml:"sizeInBits,attr"`
	IntegerDataEncoding xmlIntegerDataEncoding `xml:"IntegerDataEncoding"`
}

type xmlFloatParameterType struct {
	xmlBaseType
	SizeInBits        string               `xml:"sizeInBits,attr"`
	FloatDataEncoding xmlFloatDataEncoding `xml:"FloatDataEncoding"`
}

type xmlStringParameterType struct {
	xmlBaseType
	StringDataEncoding xmlStringDataEncoding `xml:"StringDataEncoding"`
}

type xmlBinaryParameterType struct {
	xmlBaseType
	BinaryDataEncoding xmlBinaryDataEncoding `xml:"BinaryDataEncoding"`
}

type xmlBooleanParameterType struct {
	xmlBaseType
	OneStringValue      string                 `xml:"oneStringValue,attr"`
	ZeroStringValue     string                 `xml:"zeroStringValue,attr"`
	IntegerDataEncoding xmlIntegerDataEncoding `xml:"IntegerDataEncoding"`
}

type xmlEnumeratedParameterType struct {
	xmlBaseType
	IntegerDataEncoding xmlIntegerDataEncoding `xml:"IntegerDataEncoding"`
	EnumerationList     xmlEnumerationList     `xml:"EnumerationList"`
}

type xmlAggregateParameterType struct {
	xmlBaseType
	MemberList xmlMemberList `xml:"MemberList"`
}

type xmlArrayParameterType struct {
	xmlBaseType
	ArrayTypeRef string           `xml:"arrayTypeRef,attr"`
	DimensionList xmlDimensionList `xml:"DimensionList"`
}

type xmlAbsoluteTimeParameterType struct {
	xmlBaseType
	ReferenceTime string `xml:"ReferenceTime"`
}

type xmlParameterTypeSet struct {
	IntegerParameterTypes      []xmlIntegerParameterType      `xml:"IntegerParameterType"`
	FloatParameterTypes        []xmlFloatParameterType        `xml:"FloatParameterType"`
	StringParameterTypes       []xmlStringParameterType       `xml:"StringParameterType"`
	BinaryParameterTypes       []xmlBinaryParameterType       `xml:"BinaryParameterType"`
	BooleanParameterTypes      []xmlBooleanParameterType      `xml:"BooleanParameterType"`
	EnumeratedParameterTypes   []xmlEnumeratedParameterType   `xml:"EnumeratedParameterType"`
	AggregateParameterTypes    []xmlAggregateParameterType    `xml:"AggregateParameterType"`
	ArrayParameterTypes        []xmlArrayParameterType        `xml:"ArrayParameterType"`
	AbsoluteTimeParameterTypes []xmlAbsoluteTimeParameterType `xml:"AbsoluteTimeParameterType"`
}

type xmlParameter struct {
	Name             string `xml:"name,attr"`
	ParameterTypeRef string `xml:"parameterTypeRef,attr"`
	ShortDescription string `xml:"shortDescription,attr"`
	DataSource       string `xml:"dataSource,attr"`
}

type xmlParameterSet struct {
	Parameters []xmlParameter `xml:"Parameter"`
}

type xmlComparison struct {
	ParameterRef       string `xml:"parameterRef,attr"`
	Value              string `xml:"value,attr"`
	ComparisonOperator string `xml:"comparisonOperator,attr"`
	UseCalibratedValue string `xml:"useCalibratedValue,attr"`
	Instance           string `xml:"instance,attr"`
}

type xmlComparisonList struct {
	Comparisons []xmlComparison `xml:"Comparison"`
}

// xmlBooleanExpression models the children of ANDedConditions/ORedConditions.
// Nested ANDedConditions/ORedConditions recurse. A ComparisonList nested
// here is an implicit AND: under ANDedConditions the builder flattens its
// comparisons into this expression's own operands, and under
// ORedConditions it becomes one nested AND operand.
type xmlBooleanExpression struct {
	Comparisons     []xmlComparison         `xml:"Comparison"`
	ComparisonLists []xmlComparisonList     `xml:"ComparisonList"`
	ANDedConditions []xmlBooleanExpression  `xml:"ANDedConditions"`
	ORedConditions  []xmlBooleanExpression  `xml:"ORedConditions"`
}

type xmlMatchCriteria struct {
	Comparison      *xmlComparison         `xml:"Comparison"`
	ComparisonList  *xmlComparisonList     `xml:"ComparisonList"`
	ANDedConditions *xmlBooleanExpression  `xml:"ANDedConditions"`
	ORedConditions  *xmlBooleanExpression  `xml:"ORedConditions"`
}

type xmlLocationInContainerInBits struct {
	ReferenceLocation string `xml:"referenceLocation,attr"`
	Text              string `xml:",chardata"`
}

type xmlParameterRefEntry struct {
	ParameterRef         string                        `xml:"parameterRef,attr"`
	LocationInContainer  *xmlLocationInContainerInBits `xml:"LocationInContainerInBits"`
	IncludeCondition     *xmlMatchCriteria             `xml:"IncludeCondition"`
}

type xmlContainerRefEntry struct {
	ContainerRef        string                        `xml:"containerRef,attr"`
	LocationInContainer *xmlLocationInContainerInBits `xml:"LocationInContainerInBits"`
	IncludeCondition    *xmlMatchCriteria             `xml:"IncludeCondition"`
}

// xmlEntry is one entry of an EntryList, tagged by which element produced
// it. Entries are decoded in document order (see xmlEntryList's
// UnmarshalXML) since a container's default bit position for an entry
// with no explicit LocationInContainerInBits is "immediately after the
// previous entry" — losing source order would silently corrupt decoding.
type xmlEntry struct {
	Kind      string
	Parameter xmlParameterRefEntry
	Container xmlContainerRefEntry
}

type xmlEntryList struct {
	Entries []xmlEntry
}

func (el *xmlEntryList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "ParameterRefEntry":
				var pe xmlParameterRefEntry
				if err := d.DecodeElement(&pe, &t); err != nil {
					return err
				}
				el.Entries = append(el.Entries, xmlEntry{Kind: "ParameterRefEntry", Parameter: pe})
			case "ContainerRefEntry":
				var ce xmlContainerRefEntry
				if err := d.DecodeElement(&ce, &t); err != nil {
					return err
				}
				el.Entries = append(el.Entries, xmlEntry{Kind: "ContainerRefEntry", Container: ce})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

type xmlBaseContainer struct {
	ContainerRef        string            `xml:"containerRef,attr"`
	RestrictionCriteria *xmlMatchCriteria `xml:"RestrictionCriteria"`
}

type xmlSequenceContainer struct {
	Name             string            `xml:"name,attr"`
	ShortDescription string            `xml:"shortDescription,attr"`
	Abstract         string            `xml:"abstract,attr"`
	EntryList        xmlEntryList      `xml:"EntryList"`
	BaseContainer    *xmlBaseContainer `xml:"BaseContainer"`
}

type xmlContainerSet struct {
	SequenceContainers []xmlSequenceContainer `xml:"SequenceContainer"`
}

type xmlTelemetryMetaData struct {
	ParameterTypeSet xmlParameterTypeSet `xml:"ParameterTypeSet"`
	ParameterSet     xmlParameterSet     `xml:"ParameterSet"`
	ContainerSet     xmlContainerSet     `xml:"ContainerSet"`
}

type xmlSpaceSystem struct {
	Name              string               `xml:"name,attr"`
	ShortDescription  string               `xml:"shortDescription,attr"`
	LongDescription   string               `xml:"LongDescription"`
	TelemetryMetaData xmlTelemetryMetaData `xml:"TelemetryMetaData"`
	SpaceSystems      []xmlSpaceSystem     `xml:"SpaceSystem"`
}

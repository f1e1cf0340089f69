package xtceload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmodb/xtce/bitbuf"
)

const noByteOrderXML = `<?xml version="1.0"?>
<SpaceSystem name="RefXtce">
  <TelemetryMetaData>
    <ParameterTypeSet>
      <IntegerParameterType name="u16_type" signed="false" sizeInBits="16">
        <IntegerDataEncoding sizeInBits="16" encoding="unsigned"/>
      </IntegerParameterType>
    </ParameterTypeSet>
    <ParameterSet>
      <Parameter name="p1" parameterTypeRef="u16_type"/>
    </ParameterSet>
    <ContainerSet>
      <SequenceContainer name="packet1">
        <EntryList>
          <ParameterRefEntry parameterRef="p1"/>
        </EntryList>
      </SequenceContainer>
    </ContainerSet>
  </TelemetryMetaData>
</SpaceSystem>
`

func TestWithDefaultByteOrderAppliesWhenAttributeOmitted(t *testing.T) {
	path := writeXML(t, t.TempDir(), "sample.xtce", noByteOrderXML)

	loaded, err := Load(path, WithDefaultByteOrder(bitbuf.LittleEndian))
	require.NoError(t, err)

	pidx, ok := loaded.MDB.SearchParameter("/RefXtce/p1")
	require.True(t, ok)
	dt := loaded.MDB.DataTypeByIdx(loaded.MDB.ParameterByIdx(pidx).Ptype)
	assert.Equal(t, bitbuf.LittleEndian, dt.Encoding.Integer.ByteOrder)
}

const badOperatorXML = `<?xml version="1.0"?>
<SpaceSystem name="RefXtce">
  <TelemetryMetaData>
    <ParameterTypeSet>
      <IntegerParameterType name="u8_type" signed="false" sizeInBits="8">
        <IntegerDataEncoding sizeInBits="8" encoding="unsigned"/>
      </IntegerParameterType>
    </ParameterTypeSet>
    <ParameterSet>
      <Parameter name="mode" parameterTypeRef="u8_type"/>
      <Parameter name="extra" parameterTypeRef="u8_type"/>
    </ParameterSet>
    <ContainerSet>
      <SequenceContainer name="packet1">
        <EntryList>
          <ParameterRefEntry parameterRef="mode"/>
          <ParameterRefEntry parameterRef="extra">
            <IncludeCondition>
              <Comparison parameterRef="mode" value="1" comparisonOperator="equalToo" useCalibratedValue="false"/>
            </IncludeCondition>
          </ParameterRefEntry>
        </EntryList>
      </SequenceContainer>
    </ContainerSet>
  </TelemetryMetaData>
</SpaceSystem>
`

func TestWithStrictRejectsUnrecognizedComparisonOperator(t *testing.T) {
	path := writeXML(t, t.TempDir(), "sample.xtce", badOperatorXML)

	_, err := Load(path, WithStrict(true))
	assert.Error(t, err)

	_, err = Load(path)
	assert.NoError(t, err)
}

package xtceload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmodb/xtce/container"
)

func writeXML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const flatContainerXML = `<?xml version="1.0"?>
<SpaceSystem name="RefXtce">
  <TelemetryMetaData>
    <ParameterTypeSet>
      <IntegerParameterType name="u8_type" signed="false" sizeInBits="8">
        <IntegerDataEncoding sizeInBits="8" encoding="unsigned"/>
      </IntegerParameterType>
    </ParameterTypeSet>
    <ParameterSet>
      <Parameter name="p1" parameterTypeRef="u8_type"/>
      <Parameter name="p2" parameterTypeRef="u8_type"/>
    </ParameterSet>
    <ContainerSet>
      <SequenceContainer name="packet1">
        <EntryList>
          <ParameterRefEntry parameterRef="p1"/>
          <ParameterRefEntry parameterRef="p2"/>
        </EntryList>
      </SequenceContainer>
    </ContainerSet>
  </TelemetryMetaData>
</SpaceSystem>
`

func TestLoadFlatContainerDecodesInOrder(t *testing.T) {
	path := writeXML(t, t.TempDir(), "flat.xtce", flatContainerXML)

	loaded, err := Load(path)
	require.NoError(t, err)

	root, ok := loaded.MDB.SearchContainer("/RefXtce/packet1")
	require.True(t, ok)

	proc := container.New(loaded.MDB, loaded.Evaluators, loaded.Children)
	pvl, err := proc.Process([]byte{0x0A, 0x14}, root)
	require.NoError(t, err)

	p1, ok := loaded.MDB.SearchParameter("/RefXtce/p1")
	require.True(t, ok)
	p2, ok := loaded.MDB.SearchParameter("/RefXtce/p2")
	require.True(t, ok)

	v1, ok := pvl.LastInserted(p1)
	require.True(t, ok)
	assert.EqualValues(t, 0x0A, v1.RawValue.AsUint64())

	v2, ok := pvl.LastInserted(p2)
	require.True(t, ok)
	assert.EqualValues(t, 0x14, v2.RawValue.AsUint64())
}

const includeConditionXML = `<?xml version="1.0"?>
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
              <Comparison parameterRef="mode" value="1" comparisonOperator="equalTo" useCalibratedValue="false"/>
            </IncludeCondition>
          </ParameterRefEntry>
        </EntryList>
      </SequenceContainer>
    </ContainerSet>
  </TelemetryMetaData>
</SpaceSystem>
`

func TestLoadIncludeConditionGatesEntry(t *testing.T) {
	path := writeXML(t, t.TempDir(), "cond.xtce", includeConditionXML)

	loaded, err := Load(path)
	require.NoError(t, err)

	root, ok := loaded.MDB.SearchContainer("/RefXtce/packet1")
	require.True(t, ok)
	extra, ok := loaded.MDB.SearchParameter("/RefXtce/extra")
	require.True(t, ok)

	proc := container.New(loaded.MDB, loaded.Evaluators, loaded.Children)

	pvl, err := proc.Process([]byte{0x01, 0x99}, root)
	require.NoError(t, err)
	v, ok := pvl.LastInserted(extra)
	require.True(t, ok)
	assert.EqualValues(t, 0x99, v.RawValue.AsUint64())

	pvl, err = proc.Process([]byte{0x00, 0x99}, root)
	require.NoError(t, err)
	_, ok = pvl.LastInserted(extra)
	assert.False(t, ok)
}

const inheritanceXML = `<?xml version="1.0"?>
<SpaceSystem name="RefXtce">
  <TelemetryMetaData>
    <ParameterTypeSet>
      <IntegerParameterType name="u8_type" signed="false" sizeInBits="8">
        <IntegerDataEncoding sizeInBits="8" encoding="unsigned"/>
      </IntegerParameterType>
    </ParameterTypeSet>
    <ParameterSet>
      <Parameter name="apid" parameterTypeRef="u8_type"/>
      <Parameter name="payload" parameterTypeRef="u8_type"/>
    </ParameterSet>
    <ContainerSet>
      <SequenceContainer name="base">
        <EntryList>
          <ParameterRefEntry parameterRef="apid"/>
        </EntryList>
      </SequenceContainer>
      <SequenceContainer name="child">
        <EntryList>
          <ParameterRefEntry parameterRef="payload"/>
        </EntryList>
        <BaseContainer containerRef="base">
          <RestrictionCriteria>
            <Comparison parameterRef="apid" value="7" comparisonOperator="equalTo" useCalibratedValue="false"/>
          </RestrictionCriteria>
        </BaseContainer>
      </SequenceContainer>
    </ContainerSet>
  </TelemetryMetaData>
</SpaceSystem>
`

func TestLoadInheritanceChildGatedByRestriction(t *testing.T) {
	path := writeXML(t, t.TempDir(), "inherit.xtce", inheritanceXML)

	loaded, err := Load(path)
	require.NoError(t, err)

	root, ok := loaded.MDB.SearchContainer("/RefXtce/base")
	require.True(t, ok)
	payload, ok := loaded.MDB.SearchParameter("/RefXtce/payload")
	require.True(t, ok)

	proc := container.New(loaded.MDB, loaded.Evaluators, loaded.Children)

	pvl, err := proc.Process([]byte{0x07, 0x2A}, root)
	require.NoError(t, err)
	v, ok := pvl.LastInserted(payload)
	require.True(t, ok)
	assert.EqualValues(t, 0x2A, v.RawValue.AsUint64())

	pvl, err = proc.Process([]byte{0x01, 0x2A}, root)
	require.NoError(t, err)
	_, ok = pvl.LastInserted(payload)
	assert.False(t, ok)
}

const aggregateArrayXML = `<?xml version="1.0"?>
<SpaceSystem name="RefXtce">
  <TelemetryMetaData>
    <ParameterTypeSet>
      <IntegerParameterType name="u8_type" signed="false" sizeInBits="8">
        <IntegerDataEncoding sizeInBits="8" encoding="unsigned"/>
      </IntegerParameterType>
      <ArrayParameterType name="u8_array_type" arrayTypeRef="u8_type">
        <DimensionList>
          <Dimension>
            <StartingIndex><FixedValue>0</FixedValue></StartingIndex>
            <EndingIndex><FixedValue>2</FixedValue></EndingIndex>
          </Dimension>
        </DimensionList>
      </ArrayParameterType>
      <AggregateParameterType name="pair_type">
        <MemberList>
          <Member name="first" typeRef="u8_type"/>
          <Member name="second" typeRef="u8_type"/>
        </MemberList>
      </AggregateParameterType>
    </ParameterTypeSet>
    <ParameterSet>
      <Parameter name="samples" parameterTypeRef="u8_array_type"/>
      <Parameter name="pair" parameterTypeRef="pair_type"/>
    </ParameterSet>
    <ContainerSet>
      <SequenceContainer name="packet1">
        <EntryList>
          <ParameterRefEntry parameterRef="samples"/>
          <ParameterRefEntry parameterRef="pair"/>
        </EntryList>
      </SequenceContainer>
    </ContainerSet>
  </TelemetryMetaData>
</SpaceSystem>
`

func TestLoadAggregateAndArrayTypes(t *testing.T) {
	path := writeXML(t, t.TempDir(), "aggarr.xtce", aggregateArrayXML)

	loaded, err := Load(path)
	require.NoError(t, err)

	samples, ok := loaded.MDB.SearchParameter("/RefXtce/samples")
	require.True(t, ok)
	pair, ok := loaded.MDB.SearchParameter("/RefXtce/pair")
	require.True(t, ok)

	samplesType := loaded.MDB.DataTypeByIdx(loaded.MDB.ParameterByIdx(samples).Ptype)
	require.Equal(t, 3, int(samplesType.TypeData.Array.Dim[0].FixedValue))

	pairType := loaded.MDB.DataTypeByIdx(loaded.MDB.ParameterByIdx(pair).Ptype)
	require.Len(t, pairType.TypeData.Aggregate.Members, 2)
}

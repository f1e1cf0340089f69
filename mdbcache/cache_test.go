package mdbcache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmodb/xtce/container"
	"github.com/kosmodb/xtce/format"
	"github.com/kosmodb/xtce/xtceload"
)

const sampleXML = `<?xml version="1.0"?>
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

func loadSample(t *testing.T, xml string) *xtceload.Loaded {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.xtce")
	require.NoError(t, os.WriteFile(path, []byte(xml), 0o644))
	loaded, err := xtceload.Load(path)
	require.NoError(t, err)
	return loaded
}

func TestWriteReadRoundTripsNoCompression(t *testing.T) {
	loaded := loadSample(t, sampleXML)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, loaded, format.CompressionNone))

	reloaded, err := Read(&buf)
	require.NoError(t, err)
	m := reloaded.MDB

	p1, ok := m.SearchParameter("/RefXtce/p1")
	require.True(t, ok)
	p2, ok := m.SearchParameter("/RefXtce/p2")
	require.True(t, ok)

	containerIdx, ok := m.SearchContainer("/RefXtce/packet1")
	require.True(t, ok)
	sc := m.ContainerByIdx(containerIdx)
	require.Len(t, sc.Entries, 2)

	dt1 := m.DataTypeByIdx(m.ParameterByIdx(p1).Ptype)
	dt2 := m.DataTypeByIdx(m.ParameterByIdx(p2).Ptype)
	assert.Equal(t, dt1.TypeData.Integer, dt2.TypeData.Integer)
}

func TestWriteReadRoundTripsZstd(t *testing.T) {
	loaded := loadSample(t, sampleXML)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, loaded, format.CompressionZstd))

	reloaded, err := Read(&buf)
	require.NoError(t, err)

	_, ok := reloaded.MDB.SearchParameter("/RefXtce/p1")
	assert.True(t, ok)
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

// A cached database's evaluators are recompiled from CriteriaData rather
// than copied, so this exercises that the recompiled evaluator still
// gates the entry correctly.
func TestWriteReadRoundTripsIncludeCondition(t *testing.T) {
	loaded := loadSample(t, includeConditionXML)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, loaded, format.CompressionNone))

	reloaded, err := Read(&buf)
	require.NoError(t, err)
	m := reloaded.MDB

	root, ok := m.SearchContainer("/RefXtce/packet1")
	require.True(t, ok)
	extra, ok := m.SearchParameter("/RefXtce/extra")
	require.True(t, ok)

	proc := container.New(m, reloaded.Evaluators, reloaded.Children)

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

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, headerSize)))
	assert.Error(t, err)
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	h := header{compression: format.CompressionNone, payloadSize: 0}
	b := h.bytes()
	b[4] = 0xFF

	_, err := Read(bytes.NewReader(b))
	assert.Error(t, err)
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceDataDecodesBothShapes(t *testing.T) {
	payload := `{
		"s2": {"status": "justificada", "observation": "atestado"},
		"s1": {"present": false, "justified": true, "observation": "", "certificate": {"url": "https://x/a.pdf", "name": "a.pdf"}},
		"s3": {"observation": "sem marcação"}
	}`
	var data AttendanceData
	require.NoError(t, json.Unmarshal([]byte(payload), &data))
	require.Len(t, data, 3)

	legacy, ok := data["s2"].(LegacyEntry)
	require.True(t, ok)
	assert.Equal(t, LegacyJustified, legacy.Status)
	assert.Equal(t, DisplayJustified, legacy.DisplayStatus())

	enhanced, ok := data["s1"].(EnhancedEntry)
	require.True(t, ok)
	require.NotNil(t, enhanced.Certificate)
	assert.Equal(t, "a.pdf", enhanced.Certificate.Name)

	assert.Equal(t, DisplayAbsent, data["s3"].DisplayStatus())
	assert.Equal(t, []string{"s1", "s2", "s3"}, data.StudentIDs())
}

func TestAttendanceDataRejectsUnknownShapes(t *testing.T) {
	var data AttendanceData
	assert.Error(t, json.Unmarshal([]byte(`{"s1": {"status": "atrasado"}}`), &data))
	assert.Error(t, json.Unmarshal([]byte(`{"s1": "presente"}`), &data))
	assert.Error(t, json.Unmarshal([]byte(`["s1"]`), &data))
}

func TestSaveAttendanceRequestNullData(t *testing.T) {
	var req SaveAttendanceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"classId":"c","date":"2025-01-01","attendanceData":null}`), &req))
	assert.Nil(t, req.AttendanceData)
}

func TestDisplayStatus(t *testing.T) {
	cases := []struct {
		entry AttendanceEntry
		want  string
	}{
		{LegacyEntry{Status: LegacyPresent}, DisplayPresent},
		{LegacyEntry{Status: LegacyAbsent}, DisplayAbsent},
		{EnhancedEntry{Present: true, Justified: true}, DisplayPresent},
		{EnhancedEntry{Justified: true}, DisplayJustified},
		{EnhancedEntry{}, DisplayAbsent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.entry.DisplayStatus())
	}
}

func TestAttendanceRecordKeepsVariant(t *testing.T) {
	now := time.Now().UTC()

	legacy := NewAttendanceRecord("r1", "a1", "s1", LegacyEntry{Status: LegacyPresent, Observation: "ok"}, now)
	require.NotNil(t, legacy.Status)
	assert.Equal(t, "presente", *legacy.Status)
	assert.True(t, legacy.Present)
	assert.Nil(t, legacy.CertificateURL)
	assert.Equal(t, LegacyEntry{Status: LegacyPresent, Observation: "ok"}, legacy.Entry())

	cert := &Certificate{URL: "u", Name: "n"}
	enhanced := NewAttendanceRecord("r2", "a1", "s2", EnhancedEntry{Justified: true, Certificate: cert}, now)
	assert.Nil(t, enhanced.Status)
	assert.Equal(t, EnhancedEntry{Justified: true, Certificate: cert}, enhanced.Entry())
}

func TestAttendanceFilterMatches(t *testing.T) {
	s := AttendanceSession{ClassID: "c1", Date: "2025-03-10"}
	assert.True(t, AttendanceFilter{}.Matches(s))
	assert.True(t, AttendanceFilter{ClassID: "c1", DateFrom: "2025-03-10", DateTo: "2025-03-31"}.Matches(s))
	assert.False(t, AttendanceFilter{ClassID: "c2"}.Matches(s))
	assert.False(t, AttendanceFilter{DateFrom: "2025-03-11"}.Matches(s))
	assert.False(t, AttendanceFilter{DateTo: "2025-03-09"}.Matches(s))
}

func TestUserNeverSerializesPassword(t *testing.T) {
	raw, err := json.Marshal(User{ID: "u1", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password\"")
	assert.NotContains(t, string(raw), "$2a$")
}

package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRostersTrimsAndUppercases(t *testing.T) {
	input := "course_code,student_no,student_name\n" +
		" blm331 ,2021001, Ayse Yilmaz \n" +
		"BLM331,2021002,Mehmet Kaya\n"

	rows, err := ParseRosters(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BLM331", rows[0].CourseCode)
	assert.Equal(t, "2021001", rows[0].StudentNo)
	assert.Equal(t, "Ayse Yilmaz", rows[0].StudentName)
}

func TestParseRoomsReadsCapacity(t *testing.T) {
	input := "room,capacity\nA101,60\nB201 ,45\n"

	rows, err := ParseRooms(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A101", rows[0].Name)
	assert.Equal(t, 60, rows[0].Capacity)
	assert.Equal(t, "B201", rows[1].Name)
}

func TestParseProximitiesSplitsNeighbors(t *testing.T) {
	input := "room,neighbors\nA101,A102; A103 ;\nB201,\n"

	rows, err := ParseProximities(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"A102", "A103"}, rows[0].NeighborNames())
	assert.Empty(t, rows[1].NeighborNames())
}

func TestParseRostersRejectsMalformedInput(t *testing.T) {
	_, err := ParseRosters(strings.NewReader(""))
	assert.Error(t, err)
}

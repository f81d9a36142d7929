// Copyright 2025 Greenmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pgcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDump = `--
-- PostgreSQL database dump
--

COPY public."District" (id, name, code, state, created_at) FROM stdin;
1	Alpha	ALP	NY	2020-01-01
2	Beta	\N	CA	2020-02-01
\.


--
-- Data for Name: users; Type: TABLE DATA; Schema: public; Owner: -
--

COPY public.users (id, email, name) FROM stdin;

1	a@example.com	Alice

2	b@example.com	Bob

\.

COPY public."Role" (id, title) FROM stdin;
\.
`

func TestFindSection(t *testing.T) {
	id, err := ParseIdentifier(`public."District"`)
	require.NoError(t, err)

	s, err := FindSection([]byte(testDump), id)
	require.NoError(t, err)
	assert.True(t, s.Terminated)
	assert.Equal(t, Identifier{Schema: "public", Name: "District"}, s.Identifier)
	assert.Equal(t, []string{
		"1\tAlpha\tALP\tNY\t2020-01-01",
		"2\tBeta\t\\N\tCA\t2020-02-01",
	}, s.Rows())
}

func TestFindSection_blank_lines(t *testing.T) {
	s, err := FindSection([]byte(testDump), Identifier{Name: "users"})
	require.NoError(t, err)

	// leading and trailing blank lines are trimmed, internal ones are kept
	assert.Equal(t, []string{
		"1\ta@example.com\tAlice",
		"",
		"2\tb@example.com\tBob",
	}, s.Lines)
	assert.Equal(t, []string{
		"1\ta@example.com\tAlice",
		"2\tb@example.com\tBob",
	}, s.Rows())
}

func TestFindSection_empty_block(t *testing.T) {
	s, err := FindSection([]byte(testDump), Identifier{Name: "Role"})
	require.NoError(t, err)
	assert.Empty(t, s.Rows())
}

func TestFindSection_not_found(t *testing.T) {
	_, err := FindSection([]byte(testDump), Identifier{Name: "district"})
	require.ErrorIs(t, err, ErrSectionNotFound)

	_, err = FindSection([]byte(testDump), Identifier{Schema: "audit", Name: "users"})
	require.ErrorIs(t, err, ErrSectionNotFound)
}

func TestFindSection_first_occurrence(t *testing.T) {
	doc := "COPY a (id) FROM stdin;\n1\n\\.\nCOPY a (id) FROM stdin;\n2\n\\.\n"
	s, err := FindSection([]byte(doc), Identifier{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, s.Rows())
}

func TestFindSection_header_inside_other_block_is_data(t *testing.T) {
	doc := "COPY notes (body) FROM stdin;\nCOPY b (id) FROM stdin;\n\\.\nCOPY b (id) FROM stdin;\n42\n\\.\n"
	s, err := FindSection([]byte(doc), Identifier{Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, s.Rows())
}

func TestFindSection_dot_terminated_header(t *testing.T) {
	doc := "COPY public.\"District\" (id, name, code, state, created_at) FROM stdin.\n" +
		"1\tAlpha\tALP\tNY\t2020-01-01\n\\."
	s, err := FindSection([]byte(doc), Identifier{Schema: "public", Name: "District"})
	require.NoError(t, err)
	require.Len(t, s.Rows(), 1)

	row := NewRow(5)
	require.NoError(t, row.Decode([]byte(s.Rows()[0])))
	assert.Equal(t, []string{"1", "Alpha", "ALP", "NY", "2020-01-01"}, row.Fields())
}

func TestFindSection_crlf_and_unterminated(t *testing.T) {
	doc := "COPY t (id, name) FROM stdin;\r\n1\tx\r\n2\ty\r\n"
	s, err := FindSection([]byte(doc), Identifier{Name: "t"})
	require.NoError(t, err)
	assert.False(t, s.Terminated)
	assert.Equal(t, []string{"1\tx", "2\ty"}, s.Rows())
}

func TestListSections(t *testing.T) {
	sections := ListSections([]byte(testDump))
	require.Len(t, sections, 3)

	assert.Equal(t, `public."District"`, sections[0].Identifier.String())
	assert.Equal(t, 2, sections[0].Rows)
	assert.Equal(t, 5, sections[0].Line)

	assert.Equal(t, "public.users", sections[1].Identifier.String())
	assert.Equal(t, 2, sections[1].Rows)

	assert.Equal(t, `public."Role"`, sections[2].Identifier.String())
	assert.Equal(t, 0, sections[2].Rows)
	assert.True(t, sections[2].Terminated)
}

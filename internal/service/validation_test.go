package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/movedex/internal/repository"
)

func TestNormalizeIdentifier(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantMsg string
	}{
		{"numeric", "1", "1", ""},
		{"leading_zeros", "007", "7", ""},
		{"name", "thunder-punch", "thunder-punch", ""},
		{"trim_and_lower", "  Swords-Dance ", "swords-dance", ""},
		{"plus_in_name", "damage+ailment", "damage+ailment", ""},
		{"empty", "   ", "", "must not be empty"},
		{"zero", "0", "0", ""},
		{"negative", "-1", "-1", ""},
		{"negative_leading_zeros", "-007", "-7", ""},
		{"negative_zero", "-0", "0", ""},
		{"overflow", "99999999999999999999", "", "must be an integer id within range"},
		{"lone_minus", "-", "", "must be a numeric id or a lowercase resource name"},
		{"leading_minus_name", "-abc", "", "must be a numeric id or a lowercase resource name"},
		{"too_long", strings.Repeat("a", 101), "", "length must be at most 100"},
		{"max_length", strings.Repeat("a", 100), strings.Repeat("a", 100), ""},
		{"slash", "move/1", "", "must be a numeric id or a lowercase resource name"},
		{"underscore", "thunder_punch", "", "must be a numeric id or a lowercase resource name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, fe := normalizeIdentifier("id", tc.in)
			if tc.wantMsg == "" {
				assert.Nil(t, fe)
				assert.Equal(t, tc.want, got)
				return
			}
			if assert.NotNil(t, fe) {
				assert.Equal(t, "id", fe.Field)
				assert.Equal(t, tc.wantMsg, fe.Message)
			}
		})
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		in, want repository.Page
	}{
		{repository.Page{}, repository.Page{Limit: 20}},
		{repository.Page{Limit: -5, Offset: -1}, repository.Page{Limit: 20}},
		{repository.Page{Limit: 500, Offset: 40}, repository.Page{Limit: 100, Offset: 40}},
		{repository.Page{Limit: 7, Offset: 3}, repository.Page{Limit: 7, Offset: 3}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizePage(tc.in))
	}
}

func TestValidateKind(t *testing.T) {
	assert.Nil(t, validateKind("move-target"))
	fe := validateKind("pokemon")
	if assert.NotNil(t, fe) {
		assert.Equal(t, "kind", fe.Field)
	}
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, []string{"pound", "1"}, cacheKeys("pound", []byte(`{"id":1,"name":"pound"}`)))
	assert.Equal(t, []string{"1", "pound"}, cacheKeys("1", []byte(`{"id":1,"name":"pound"}`)))
	assert.Equal(t, []string{"list:20:0"}, cacheKeys("list:20:0", []byte(`{"count":3,"results":[]}`)))
	assert.Equal(t, []string{"x"}, cacheKeys("x", []byte(`not json`)))
	assert.Equal(t, []string{"0", "none"}, cacheKeys("0", []byte(`{"id":0,"name":"none"}`)))
	assert.Equal(t, []string{"unknown", "-1"}, cacheKeys("unknown", []byte(`{"id":-1,"name":"unknown"}`)))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFoldsNameParts(t *testing.T) {
	c := SearchCriteria{FirstName: " Thabo ", LastName: " Mohapi "}.Normalize()
	assert.Equal(t, "Thabo Mohapi", c.Name)

	// An explicit combined name wins over the parts.
	c = SearchCriteria{Name: "Lerato Sello", FirstName: "Thabo"}.Normalize()
	assert.Equal(t, "Lerato Sello", c.Name)

	c = SearchCriteria{LastName: "Mohapi"}.Normalize()
	assert.Equal(t, "Mohapi", c.Name)
}

func TestNormalizeFoldsRegionKeys(t *testing.T) {
	c := SearchCriteria{RegionCode: " BER "}.Normalize()
	assert.Equal(t, "BER", c.Region)

	c = SearchCriteria{RegionName: "Berea"}.Normalize()
	assert.Equal(t, "Berea", c.Region)

	// Region wins over the code, the code over the name.
	c = SearchCriteria{Region: "LEI", RegionCode: "BER", RegionName: "Berea"}.Normalize()
	assert.Equal(t, "LEI", c.Region)
	c = SearchCriteria{RegionCode: "BER", RegionName: "Leribe"}.Normalize()
	assert.Equal(t, "BER", c.Region)

	assert.True(t, SearchCriteria{RegionCode: "BER"}.Normalize().HasCriteria())
}

func TestHasExactPaths(t *testing.T) {
	assert.True(t, SearchCriteria{Identifier: "123456789"}.HasExactIdentifier())
	assert.False(t, SearchCriteria{}.HasExactIdentifier())

	assert.True(t, SearchCriteria{Phone: "+266 5555 0001"}.HasExactPhone())
	assert.False(t, SearchCriteria{Phone: "   "}.HasExactPhone())
	// Phone with no digits at all is not an exact path.
	assert.False(t, SearchCriteria{Phone: "abc"}.HasExactPhone())
}

func TestHasCriteria(t *testing.T) {
	assert.False(t, SearchCriteria{}.HasCriteria())
	assert.False(t, SearchCriteria{Identifier: "123"}.HasCriteria())
	assert.True(t, SearchCriteria{Name: "Mohapi"}.HasCriteria())
	assert.True(t, SearchCriteria{Region: "Berea"}.HasCriteria())
	assert.True(t, SearchCriteria{PartialPhone: "0001"}.HasCriteria())
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, 20, SearchCriteria{}.EffectiveLimit())
	assert.Equal(t, 5, SearchCriteria{Limit: 5}.EffectiveLimit())
	assert.Equal(t, 20, SearchCriteria{Limit: 500}.EffectiveLimit())
	assert.Equal(t, 20, SearchCriteria{Limit: -1}.EffectiveLimit())
}

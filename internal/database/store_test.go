package database

import (
	"testing"

	"license-activation-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseStoreCAS(t *testing.T) {
	InitTestDB()
	defer CleanTestDB()

	store := NewLicenseStore(DB)

	lic := &model.License{
		Key:              "CAS-TEST-1",
		Status:           model.StatusInactive,
		ActivationLimit:  2,
		ActivatedDomains: model.DomainList{},
	}
	require.NoError(t, DB.Create(lic).Error)

	// 不存在的密钥返回 (nil, nil)
	missing, err := store.GetByKey("NO-SUCH-KEY")
	require.NoError(t, err)
	assert.Nil(t, missing)

	loaded, err := store.GetByKey("CAS-TEST-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.EqualValues(t, 0, loaded.Revision)

	// 正常写回：版本号推进
	loaded.Status = model.StatusActive
	loaded.ActivatedDomains = model.DomainList{"a.com"}
	ok, err := store.SaveCAS(loaded, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, loaded.Revision)

	// 持有过期版本号的写入被拒绝
	stale, _ := store.GetByKey("CAS-TEST-1")
	stale.ActivatedDomains = model.DomainList{"b.com"}
	ok, err = store.SaveCAS(stale, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// 落库内容以成功的那次为准
	final, _ := store.GetByKey("CAS-TEST-1")
	assert.Equal(t, model.DomainList{"a.com"}, final.ActivatedDomains)
	assert.Equal(t, model.StatusActive, final.Status)
}

func TestDomainListRoundTrip(t *testing.T) {
	InitTestDB()
	defer CleanTestDB()

	lic := &model.License{
		Key:              "DL-TEST-1",
		Status:           model.StatusActive,
		ActivationLimit:  model.UnlimitedActivations,
		ActivatedDomains: model.DomainList{"a.com", "b.com", "c.com"},
	}
	require.NoError(t, DB.Create(lic).Error)

	var loaded model.License
	require.NoError(t, DB.Where("key = ?", "DL-TEST-1").First(&loaded).Error)
	assert.Equal(t, model.DomainList{"a.com", "b.com", "c.com"}, loaded.ActivatedDomains)
	assert.True(t, loaded.IsUnlimited())
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/store"
)

const prefsKeyPrefix = "sleeplog:prefs:"

// PreferencesRepository subject 展示偏好（名称/颜色）
type PreferencesRepository interface {
	// Get 未设置时返回 (nil, nil)
	Get(ctx context.Context, subject domain.SubjectID) (*domain.Preference, error)
	Set(ctx context.Context, subject domain.SubjectID, pref domain.Preference) error
}

// KVPreferencesRepository 偏好保存在 KV 中，每个 subject 一个 key
type KVPreferencesRepository struct {
	kv store.KV
}

func NewKVPreferencesRepository(kv store.KV) *KVPreferencesRepository {
	return &KVPreferencesRepository{kv: kv}
}

var _ PreferencesRepository = (*KVPreferencesRepository)(nil)

func (r *KVPreferencesRepository) Get(ctx context.Context, subject domain.SubjectID) (*domain.Preference, error) {
	raw, err := r.kv.Get(ctx, prefsKeyPrefix+string(subject))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference for %s: %w", subject, err)
	}
	var pref domain.Preference
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		return nil, fmt.Errorf("failed to decode preference for %s: %w", subject, err)
	}
	return &pref, nil
}

func (r *KVPreferencesRepository) Set(ctx context.Context, subject domain.SubjectID, pref domain.Preference) error {
	data, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, prefsKeyPrefix+string(subject), string(data), 0); err != nil {
		return fmt.Errorf("failed to set preference for %s: %w", subject, err)
	}
	return nil
}

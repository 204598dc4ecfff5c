package domain

import (
	"fmt"
	"strings"
)

// SubjectID 被记录睡眠的对象标识（婴儿 / 两名成人）
type SubjectID string

const (
	SubjectBaby  SubjectID = "baby"
	SubjectUser1 SubjectID = "user1"
	SubjectUser2 SubjectID = "user2"
)

// Subject 对象及其展示属性
type Subject struct {
	ID    SubjectID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// Preference 用户对某个 subject 的展示偏好；空字段表示使用默认值
type Preference struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

var defaultSubjects = []Subject{
	{ID: SubjectBaby, Name: "Baby", Color: "#FF9F40"},
	{ID: SubjectUser1, Name: "User 1", Color: "#36A2EB"},
	{ID: SubjectUser2, Name: "User 2", Color: "#FF6384"},
}

// Subjects 返回内置的 subject 列表（固定顺序：baby, user1, user2）
func Subjects() []Subject {
	out := make([]Subject, len(defaultSubjects))
	copy(out, defaultSubjects)
	return out
}

// SubjectIDs 返回所有 subject 标识，顺序与 Subjects 一致
func SubjectIDs() []SubjectID {
	ids := make([]SubjectID, 0, len(defaultSubjects))
	for _, s := range defaultSubjects {
		ids = append(ids, s.ID)
	}
	return ids
}

// DefaultSubject 返回 id 对应的内置默认值
func DefaultSubject(id SubjectID) (Subject, bool) {
	for _, s := range defaultSubjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// Valid 是否为已知 subject
func (id SubjectID) Valid() bool {
	_, ok := DefaultSubject(id)
	return ok
}

// ParseSubject 解析 subject 标识（忽略大小写和空白）
func ParseSubject(s string) (SubjectID, error) {
	id := SubjectID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubject, s)
	}
	return id, nil
}

// Apply 用偏好覆盖默认展示属性，空字段保留默认值
func (p Preference) Apply(s Subject) Subject {
	if name := strings.TrimSpace(p.Name); name != "" {
		s.Name = name
	}
	if color := strings.TrimSpace(p.Color); color != "" {
		s.Color = color
	}
	return s
}

package repository

import (
	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/model"
)

type LessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.db.Create(lesson).Error
}

func (r *LessonRepository) GetByID(id int64) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.Where("id = ?", id).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByCourse 按课程顺序列出课时
func (r *LessonRepository) ListByCourse(courseID int64) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	err := r.db.Where("course_id = ?", courseID).
		Order("sort_order").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.db.Save(lesson).Error
}

func (r *LessonRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Lesson{}).Where("id = ?", id).Updates(fields).Error
}

package repository

import (
	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/model"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *CourseRepository) GetByID(id int64) (*model.Course, error) {
	var course model.Course
	err := r.db.Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.db.Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListPublished 分页列出已发布课程
func (r *CourseRepository) ListPublished(page, pageSize int) ([]*model.Course, int64, error) {
	var courses []*model.Course
	var total int64

	query := r.db.Model(&model.Course{}).Where("is_published = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("difficulty, title").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.db.Save(course).Error
}

func (r *CourseRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Course{}).Where("id = ?", id).Updates(fields).Error
}

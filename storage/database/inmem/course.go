package inmemdb

import (
	"context"

	"github.com/trezcool/campus/core/course"
)

type courseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	defer repo.db.rlock(ctx)()

	courses := make([]course.Course, 0)
	for _, crs := range repo.db.t.courses {
		if filter.Grade == "" || crs.Grade == filter.Grade {
			courses = append(courses, crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	defer repo.db.rlock(ctx)()

	for _, crs := range repo.db.t.courses {
		if crs.ID == id {
			return crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	defer repo.db.rlock(ctx)()

	enrs := make([]course.Enrollment, 0)
	for _, enr := range repo.db.t.enrollments {
		if (filter.StudentID == "" || enr.StudentID == filter.StudentID) &&
			(filter.CourseID == "" || enr.CourseID == filter.CourseID) &&
			(filter.Status == "" || enr.Status == filter.Status) {
			enrs = append(enrs, enr)
		}
	}
	return enrs, nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) error {
	defer repo.db.lock(ctx)()
	repo.db.t.enrollments = append(repo.db.t.enrollments, enr)
	return nil
}

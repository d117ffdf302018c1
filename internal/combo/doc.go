// Package combo компонует pipelines: релаксация как предпосылка и
// конкурентные ветки фононов, электронных свойств и молекулярной
// динамики поверх релаксированной структуры.
package combo

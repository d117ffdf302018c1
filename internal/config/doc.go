// Package config собирает конфигурацию запуска из флагов CLI,
// JSON-файла и значений по умолчанию (в порядке убывания приоритета).
package config

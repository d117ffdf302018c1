// Package checkpoint хранит на диске состояние шагов одной единицы работы.
//
// Чекпоинт — единственное долговечное состояние pipeline: JSON-файл в
// рабочем каталоге единицы, обновляемый после каждого перехода шага.
// Повторный запуск читает чекпоинт и пропускает шаги со статусом SUCCESS,
// благодаря чему прерванный расчёт возобновляется, а не начинается заново.
//
// Запись атомарна (временный файл + fsync + rename); отсутствующий или
// повреждённый файл читается как пустой чекпоинт.
package checkpoint
